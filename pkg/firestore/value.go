package firestore

import (
	"encoding/json"
	"strconv"
	"time"
)

// Value is the closed set of field values application code reads from and
// writes to the document store. Every concrete type below is a valid Value
// and nothing else is; Encode and Decode switch exhaustively over the set.
type Value interface {
	isValue()
}

// String is a UTF-8 string field value
type String string

// Number is a numeric field value. Integral numbers travel as 64-bit
// integers on the wire, everything else as doubles.
type Number float64

// Bool is a boolean field value
type Bool bool

// Null is the explicit null field value
type Null struct{}

// Timestamp is a point-in-time field value
type Timestamp time.Time

// GeoPoint is a first-class (latitude, longitude) coordinate value
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Reference is a pointer to another document by its resource path
type Reference struct {
	Path string
}

// Array is an ordered list of field values
type Array []Value

// Map is a string-keyed set of field values
type Map map[string]Value

func (String) isValue()    {}
func (Number) isValue()    {}
func (Bool) isValue()      {}
func (Null) isValue()      {}
func (Timestamp) isValue() {}
func (GeoPoint) isValue()  {}
func (Reference) isValue() {}
func (Array) isValue()     {}
func (Map) isValue()       {}

// Time returns the timestamp as a time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// WireValue is the store's tagged on-the-wire representation of a single
// field value. Exactly one tag is populated on a well-formed value.
type WireValue struct {
	StringValue    *string         `json:"stringValue,omitempty"`
	IntegerValue   *Int64String    `json:"integerValue,omitempty"`
	DoubleValue    *Float64Lenient `json:"doubleValue,omitempty"`
	BooleanValue   *bool           `json:"booleanValue,omitempty"`
	NullValue      json.RawMessage `json:"nullValue,omitempty"`
	TimestampValue *string         `json:"timestampValue,omitempty"`
	ReferenceValue *string         `json:"referenceValue,omitempty"`
	GeoPointValue  *LatLng         `json:"geoPointValue,omitempty"`
	ArrayValue     *WireArray      `json:"arrayValue,omitempty"`
	MapValue       *WireMap        `json:"mapValue,omitempty"`
}

// LatLng is the wire form of a geographic coordinate
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WireArray is the wire form of an array value
type WireArray struct {
	Values []WireValue `json:"values"`
}

// WireMap is the wire form of a map value
type WireMap struct {
	Fields map[string]WireValue `json:"fields"`
}

// Int64String carries a 64-bit integer the way the REST protocol does: as a
// decimal string. Unquoted numbers are accepted on decode for compatibility.
type Int64String int64

// MarshalJSON implements json.Marshaler
func (i Int64String) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(i), 10))
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Int64String) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*i = Int64String(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = Int64String(n)
	return nil
}

// Float64Lenient carries a double that is a JSON number on the wire.
// Protobuf JSON also permits string-encoded doubles, so those are accepted
// on decode.
type Float64Lenient float64

// MarshalJSON implements json.Marshaler
func (f Float64Lenient) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Float64Lenient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float64Lenient(parsed)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Float64Lenient(n)
	return nil
}
