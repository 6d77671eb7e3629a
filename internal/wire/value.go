// Package wire models the Firestore REST value format: a tagged union in which
// every value is identified by a discriminator key.
package wire

import (
	"encoding/json"
	"time"
)

// Kind is the discriminator key of a wire value.
type Kind string

const (
	KindString    Kind = "stringValue"
	KindInteger   Kind = "integerValue"
	KindDouble    Kind = "doubleValue"
	KindBoolean   Kind = "booleanValue"
	KindNull      Kind = "nullValue"
	KindTimestamp Kind = "timestampValue"
	KindGeoPoint  Kind = "geoPointValue"
	KindReference Kind = "referenceValue"
	KindMap       Kind = "mapValue"
	KindArray     Kind = "arrayValue"
)

// Kinds lists every discriminator in decode precedence order.
func Kinds() []Kind {
	return []Kind{
		KindString, KindInteger, KindDouble, KindBoolean, KindNull,
		KindTimestamp, KindGeoPoint, KindReference, KindMap, KindArray,
	}
}

// IsKnown reports whether k is one of the defined discriminators.
func (k Kind) IsKnown() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Value is the closed set of wire variants. Only types in this package implement it.
type Value interface {
	Kind() Kind
	isValue()
}

type StringValue string

type IntegerValue int64

type DoubleValue float64

type BooleanValue bool

// NullValue always serialises with an explicit null payload.
type NullValue struct{}

type TimestampValue struct {
	Time time.Time
}

type GeoPointValue struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReferenceValue holds a fully-qualified document resource name.
type ReferenceValue string

// MapValue is a nested mapping. A nil Fields map means the "fields" member was absent.
type MapValue struct {
	Fields map[string]Value
}

type ArrayValue struct {
	Values []Value
}

// UnknownValue is produced when parsing JSON that carries no known discriminator with a
// usable payload.
// It is never produced by the encoder.
type UnknownValue struct {
	Raw json.RawMessage
}

func (StringValue) Kind() Kind    { return KindString }
func (IntegerValue) Kind() Kind   { return KindInteger }
func (DoubleValue) Kind() Kind    { return KindDouble }
func (BooleanValue) Kind() Kind   { return KindBoolean }
func (NullValue) Kind() Kind      { return KindNull }
func (TimestampValue) Kind() Kind { return KindTimestamp }
func (GeoPointValue) Kind() Kind  { return KindGeoPoint }
func (ReferenceValue) Kind() Kind { return KindReference }
func (MapValue) Kind() Kind       { return KindMap }
func (ArrayValue) Kind() Kind     { return KindArray }
func (UnknownValue) Kind() Kind   { return "" }

func (StringValue) isValue()    {}
func (IntegerValue) isValue()   {}
func (DoubleValue) isValue()    {}
func (BooleanValue) isValue()   {}
func (NullValue) isValue()      {}
func (TimestampValue) isValue() {}
func (GeoPointValue) isValue()  {}
func (ReferenceValue) isValue() {}
func (MapValue) isValue()       {}
func (ArrayValue) isValue()     {}
func (UnknownValue) isValue()   {}

// Timestamp wraps t as a wire timestamp.
func Timestamp(t time.Time) TimestampValue {
	return TimestampValue{Time: t}
}

// Map builds a MapValue, allocating an empty field set when fields is nil.
func Map(fields map[string]Value) MapValue {
	if fields == nil {
		fields = map[string]Value{}
	}
	return MapValue{Fields: fields}
}

// Array builds an ArrayValue from the given elements.
func Array(values ...Value) ArrayValue {
	if values == nil {
		values = []Value{}
	}
	return ArrayValue{Values: values}
}
