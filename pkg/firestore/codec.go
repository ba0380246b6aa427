package firestore

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"rowdybuddy/pkg/errors"
)

// Encode converts an application value into its tagged wire representation.
// NaN, infinities and negative zero are not representable in the store and
// are rejected rather than silently coerced.
func Encode(v Value) (WireValue, error) {
	switch v := v.(type) {
	case nil:
		return WireValue{NullValue: json.RawMessage("null")}, nil
	case Null:
		return WireValue{NullValue: json.RawMessage("null")}, nil
	case String:
		s := string(v)
		return WireValue{StringValue: &s}, nil
	case Number:
		return encodeNumber(float64(v))
	case Bool:
		b := bool(v)
		return WireValue{BooleanValue: &b}, nil
	case Timestamp:
		s := time.Time(v).UTC().Format(time.RFC3339Nano)
		return WireValue{TimestampValue: &s}, nil
	case GeoPoint:
		return WireValue{GeoPointValue: &LatLng{Latitude: v.Latitude, Longitude: v.Longitude}}, nil
	case Reference:
		p := v.Path
		return WireValue{ReferenceValue: &p}, nil
	case Array:
		values := make([]WireValue, 0, len(v))
		for i, elem := range v {
			encoded, err := Encode(elem)
			if err != nil {
				return WireValue{}, fmt.Errorf("array element %d: %w", i, err)
			}
			values = append(values, encoded)
		}
		return WireValue{ArrayValue: &WireArray{Values: values}}, nil
	case Map:
		fields := make(map[string]WireValue, len(v))
		for key, elem := range v {
			encoded, err := Encode(elem)
			if err != nil {
				return WireValue{}, fmt.Errorf("field %q: %w", key, err)
			}
			fields[key] = encoded
		}
		return WireValue{MapValue: &WireMap{Fields: fields}}, nil
	default:
		return WireValue{}, errors.NewValidationError(
			fmt.Sprintf("unsupported value type %T", v), nil)
	}
}

// encodeNumber maps integral finite numbers to integer values and everything
// else representable to doubles
func encodeNumber(f float64) (WireValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return WireValue{}, errors.NewValidationError("number is not a finite value", nil)
	}
	if f == 0 && math.Signbit(f) {
		return WireValue{}, errors.NewValidationError("negative zero is not a valid store value", nil)
	}
	if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
		i := Int64String(int64(f))
		return WireValue{IntegerValue: &i}, nil
	}
	d := Float64Lenient(f)
	return WireValue{DoubleValue: &d}, nil
}

// Decode converts a tagged wire value back into an application value. When a
// malformed value carries several tags the first populated one wins, checked
// in the order String, Integer, Double, Boolean, Null, Timestamp, Reference,
// GeoPoint, Array, Map. A value with no tag at all is a decode error.
func Decode(wv WireValue) (Value, error) {
	switch {
	case wv.StringValue != nil:
		return String(*wv.StringValue), nil
	case wv.IntegerValue != nil:
		return Number(float64(*wv.IntegerValue)), nil
	case wv.DoubleValue != nil:
		return Number(float64(*wv.DoubleValue)), nil
	case wv.BooleanValue != nil:
		return Bool(*wv.BooleanValue), nil
	case len(wv.NullValue) > 0:
		return Null{}, nil
	case wv.TimestampValue != nil:
		t, err := time.Parse(time.RFC3339Nano, *wv.TimestampValue)
		if err != nil {
			return nil, errors.NewDecodeError(
				fmt.Sprintf("invalid timestamp value %q", *wv.TimestampValue))
		}
		return Timestamp(t), nil
	case wv.ReferenceValue != nil:
		return Reference{Path: *wv.ReferenceValue}, nil
	case wv.GeoPointValue != nil:
		return GeoPoint{Latitude: wv.GeoPointValue.Latitude, Longitude: wv.GeoPointValue.Longitude}, nil
	case wv.ArrayValue != nil:
		values := make(Array, 0, len(wv.ArrayValue.Values))
		for i, elem := range wv.ArrayValue.Values {
			decoded, err := Decode(elem)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			values = append(values, decoded)
		}
		return values, nil
	case wv.MapValue != nil:
		fields := make(Map, len(wv.MapValue.Fields))
		for key, elem := range wv.MapValue.Fields {
			decoded, err := Decode(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			fields[key] = decoded
		}
		return fields, nil
	default:
		return nil, errors.NewDecodeError("wire value has no tag populated")
	}
}

// EncodeFields encodes a document's fields into the flat wire map the REST
// payload expects. The top-level map travels as the contents of the document
// body, not wrapped in a mapValue envelope.
func EncodeFields(fields Map) (map[string]WireValue, error) {
	encoded, err := Encode(fields)
	if err != nil {
		return nil, err
	}
	return encoded.MapValue.Fields, nil
}

// DecodeFields decodes the flat wire map of a document resource back into
// application values
func DecodeFields(fields map[string]WireValue) (Map, error) {
	decoded, err := Decode(WireValue{MapValue: &WireMap{Fields: fields}})
	if err != nil {
		return nil, err
	}
	return decoded.(Map), nil
}
