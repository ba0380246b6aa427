package repository

import (
	"time"

	"rowdybuddy/pkg/firestore"
)

// Field accessors tolerant of missing or retyped fields: documents written
// by older app revisions may lack fields, and a read should not fail on them.

func stringField(fields firestore.Map, key string) string {
	if v, ok := fields[key].(firestore.String); ok {
		return string(v)
	}
	return ""
}

func geoField(fields firestore.Map, key string) firestore.GeoPoint {
	if v, ok := fields[key].(firestore.GeoPoint); ok {
		return v
	}
	return firestore.GeoPoint{}
}

func timeField(fields firestore.Map, key string) time.Time {
	if v, ok := fields[key].(firestore.Timestamp); ok {
		return v.Time()
	}
	return time.Time{}
}
