// Package convert translates between native Go values and Firestore wire values.
//
// Encoding walks an ordered rule table; the first rule whose predicate matches
// produces the wire value. Decoding is a type switch over the closed wire union.
// Both directions are pure and safe for concurrent use.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/wire"
)

// ErrUnboundReference is returned when a live reference has no resolver attached.
var ErrUnboundReference = errors.New("reference is not bound to a client")

type encodeRule struct {
	name   string
	match  func(v any) bool
	encode func(v any) (wire.Value, error)
}

// encodeRules is evaluated in order. Several predicates overlap (a json.Number is a
// string kind, a literal geo-point is a map) so the position of each rule is part of
// its contract.
var encodeRules []encodeRule

func init() {
	encodeRules = []encodeRule{
		{name: "timestamp", match: isTime, encode: encodeTime},
		{name: "liveReference", match: isDocumentRef, encode: encodeDocumentRef},
		{name: "referenceHandle", match: isReferenceHandle, encode: encodeReferenceHandle},
		{name: "geoPointHandle", match: isGeoPointHandle, encode: encodeGeoPointHandle},
		{name: "string", match: isString, encode: encodeString},
		{name: "number", match: isNumber, encode: encodeNumber},
		{name: "boolean", match: isBool, encode: encodeBool},
		{name: "null", match: isNull, encode: encodeNull},
		{name: "array", match: isSequence, encode: encodeSequence},
		{name: "referenceLiteral", match: isReferenceLiteral, encode: encodeReferenceLiteral},
		{name: "geoPointLiteral", match: isGeoPointLiteral, encode: encodeGeoPointLiteral},
		{name: "map", match: isStringKeyedMap, encode: encodeMap},
		{name: "fallback", match: func(any) bool { return true }, encode: encodeFallback},
	}
}

// Rules returns the encoder rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(encodeRules))
	for i, r := range encodeRules {
		names[i] = r.name
	}
	return names
}

// Encode converts a native value into its wire form. It only fails when a live
// reference cannot be resolved, in which case the resolver's error is returned as is.
func Encode(v any) (wire.Value, error) {
	v = indirect(v)
	for _, r := range encodeRules {
		if r.match(v) {
			return r.encode(v)
		}
	}
	// unreachable: the fallback rule always matches
	return encodeFallback(v)
}

// RuleFor reports which rule Encode would apply to v.
func RuleFor(v any) string {
	v = indirect(v)
	for _, r := range encodeRules {
		if r.match(v) {
			return r.name
		}
	}
	return ""
}

// indirect follows non-nil pointers so *T encodes like T. Nil pointers are kept and encode as null.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func encodeTime(v any) (wire.Value, error) {
	return wire.Timestamp(v.(time.Time)), nil
}

func isDocumentRef(v any) bool {
	_, ok := v.(models.DocumentRef)
	return ok
}

func encodeDocumentRef(v any) (wire.Value, error) {
	ref := v.(models.DocumentRef)
	if ref.Resolver == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnboundReference, ref.Path)
	}
	name, err := ref.Resolver.ResourceName(ref.Path)
	if err != nil {
		return nil, err
	}
	return wire.ReferenceValue(name), nil
}

func isReferenceHandle(v any) bool {
	_, ok := v.(models.Reference)
	return ok
}

func encodeReferenceHandle(v any) (wire.Value, error) {
	return wire.ReferenceValue(v.(models.Reference).Name), nil
}

func isGeoPointHandle(v any) bool {
	_, ok := v.(models.GeoPoint)
	return ok
}

func encodeGeoPointHandle(v any) (wire.Value, error) {
	gp := v.(models.GeoPoint)
	return wire.GeoPointValue{Latitude: gp.Latitude, Longitude: gp.Longitude}, nil
}

func isString(v any) bool {
	if _, ok := v.(json.Number); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.String
}

func encodeString(v any) (wire.Value, error) {
	return wire.StringValue(reflect.ValueOf(v).String()), nil
}

func isNumber(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func encodeNumber(v any) (wire.Value, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return wire.IntegerValue(i), nil
		}
		// Out-of-range literals parse to ±Inf alongside ErrRange and stay doubles.
		f, err := n.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return wire.StringValue(n.String()), nil
		}
		return floatValue(f), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.IntegerValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return wire.DoubleValue(float64(u)), nil
		}
		return wire.IntegerValue(int64(u)), nil
	default:
		return floatValue(rv.Float()), nil
	}
}

// floatValue maps integral floats to integerValue, so 5.0 and 5 encode identically.
func floatValue(f float64) wire.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return wire.DoubleValue(f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return wire.DoubleValue(f)
	}
	return wire.IntegerValue(int64(f))
}

func isBool(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Bool
}

func encodeBool(v any) (wire.Value, error) {
	return wire.BooleanValue(reflect.ValueOf(v).Bool()), nil
}

// isNull matches nil and nil pointers, maps, slices and funcs. Nil maps and slices follow
// encoding/json and become null rather than empty composites.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func encodeNull(any) (wire.Value, error) {
	return wire.NullValue{}, nil
}

func isSequence(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

func encodeSequence(v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	values := make([]wire.Value, rv.Len())
	for i := range values {
		ev, err := Encode(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		values[i] = ev
	}
	return wire.ArrayValue{Values: values}, nil
}

func isStringKeyedMap(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// soleEntry returns the value of a string-keyed map that has exactly one key, equal to key.
func soleEntry(v any, key string) (any, bool) {
	if !isStringKeyedMap(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Len() != 1 {
		return nil, false
	}
	iter := rv.MapRange()
	iter.Next()
	if iter.Key().String() != key {
		return nil, false
	}
	return indirect(iter.Value().Interface()), true
}

func isReferenceLiteral(v any) bool {
	inner, ok := soleEntry(v, models.ReferenceKey)
	return ok && isString(inner)
}

func encodeReferenceLiteral(v any) (wire.Value, error) {
	inner, _ := soleEntry(v, models.ReferenceKey)
	return wire.ReferenceValue(reflect.ValueOf(inner).String()), nil
}

// geoPointCoordinates extracts latitude and longitude from a map holding exactly those
// two keys, both numeric.
func geoPointCoordinates(v any) (lat, lng float64, ok bool) {
	if !isStringKeyedMap(v) {
		return 0, 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Len() != 2 {
		return 0, 0, false
	}
	var haveLat, haveLng bool
	iter := rv.MapRange()
	for iter.Next() {
		n, isNum := toFloat(indirect(iter.Value().Interface()))
		if !isNum {
			return 0, 0, false
		}
		switch iter.Key().String() {
		case models.LatitudeKey:
			lat, haveLat = n, true
		case models.LongitudeKey:
			lng, haveLng = n, true
		}
	}
	return lat, lng, haveLat && haveLng
}

func toFloat(v any) (float64, bool) {
	if !isNumber(v) {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	default:
		return rv.Float(), true
	}
}

func isGeoPointLiteral(v any) bool {
	inner, ok := soleEntry(v, models.GeoPointKey)
	if !ok {
		return false
	}
	_, _, ok = geoPointCoordinates(inner)
	return ok
}

func encodeGeoPointLiteral(v any) (wire.Value, error) {
	inner, _ := soleEntry(v, models.GeoPointKey)
	lat, lng, _ := geoPointCoordinates(inner)
	return wire.GeoPointValue{Latitude: lat, Longitude: lng}, nil
}

func encodeMap(v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	fields := make(map[string]wire.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fv, err := Encode(iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		fields[iter.Key().String()] = fv
	}
	return wire.MapValue{Fields: fields}, nil
}

// encodeFallback stringifies anything no other rule claims (structs, channels, funcs).
func encodeFallback(v any) (wire.Value, error) {
	return wire.StringValue(fmt.Sprint(v)), nil
}
