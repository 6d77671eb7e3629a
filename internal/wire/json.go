package wire

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mcncl/fsvalue/internal/errors"
)

// TimestampLayout is the layout used for timestampValue payloads.
const TimestampLayout = time.RFC3339Nano

func tagged(kind Kind, payload any) ([]byte, error) {
	return json.Marshal(map[Kind]any{kind: payload})
}

func (v StringValue) MarshalJSON() ([]byte, error) { return tagged(KindString, string(v)) }

// MarshalJSON emits the integer as a decimal string, the proto3 JSON mapping for int64.
func (v IntegerValue) MarshalJSON() ([]byte, error) {
	return tagged(KindInteger, strconv.FormatInt(int64(v), 10))
}

func (v DoubleValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return tagged(KindDouble, "NaN")
	case math.IsInf(f, 1):
		return tagged(KindDouble, "Infinity")
	case math.IsInf(f, -1):
		return tagged(KindDouble, "-Infinity")
	}
	return tagged(KindDouble, f)
}

func (v BooleanValue) MarshalJSON() ([]byte, error) { return tagged(KindBoolean, bool(v)) }

func (NullValue) MarshalJSON() ([]byte, error) { return tagged(KindNull, nil) }

func (v TimestampValue) MarshalJSON() ([]byte, error) {
	return tagged(KindTimestamp, v.Time.UTC().Format(TimestampLayout))
}

func (v GeoPointValue) MarshalJSON() ([]byte, error) {
	type point GeoPointValue
	return tagged(KindGeoPoint, point(v))
}

func (v ReferenceValue) MarshalJSON() ([]byte, error) { return tagged(KindReference, string(v)) }

func (v MapValue) MarshalJSON() ([]byte, error) {
	if v.Fields == nil {
		return tagged(KindMap, struct{}{})
	}
	return tagged(KindMap, map[string]any{"fields": sanitize(v.Fields)})
}

func (v ArrayValue) MarshalJSON() ([]byte, error) {
	if len(v.Values) == 0 {
		return tagged(KindArray, struct{}{})
	}
	values := make([]Value, len(v.Values))
	for i, elem := range v.Values {
		if elem == nil {
			elem = NullValue{}
		}
		values[i] = elem
	}
	return tagged(KindArray, map[string]any{"values": values})
}

func (v UnknownValue) MarshalJSON() ([]byte, error) {
	if len(v.Raw) == 0 {
		return []byte("null"), nil
	}
	return v.Raw, nil
}

// sanitize replaces nil entries so every field still serialises as a tagged value.
func sanitize(fields map[string]Value) map[string]Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		if v == nil {
			v = NullValue{}
		}
		out[k] = v
	}
	return out
}

// Marshal encodes v to its JSON wire form. A nil Value encodes as a nullValue.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		v = NullValue{}
	}
	return json.Marshal(v)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	if v == nil {
		v = NullValue{}
	}
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses a JSON wire value. Syntactically invalid JSON is an error. Otherwise
// discriminators are tried in Kinds order and the first one present with a usable payload
// wins; unrecognised members are ignored. Valid JSON with no such discriminator yields an
// UnknownValue.
func Unmarshal(data []byte) (Value, error) {
	if err := checkSyntax(data); err != nil {
		return nil, err
	}
	return parseValue(data), nil
}

func checkSyntax(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	var probe any
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		return errors.NewParsingError("failed to decode JSON", err)
	}
	return nil
}

// parseValue assumes data is valid JSON.
func parseValue(data []byte) Value {
	unknown := UnknownValue{Raw: append(json.RawMessage(nil), bytes.TrimSpace(data)...)}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return unknown
	}

	for _, kind := range Kinds() {
		payload, present := obj[string(kind)]
		if !present {
			continue
		}
		if v, ok := parsePayload(kind, payload); ok {
			return v
		}
	}
	return unknown
}

func parsePayload(kind Kind, payload json.RawMessage) (Value, bool) {
	switch kind {
	case KindString:
		var s string
		if json.Unmarshal(payload, &s) != nil {
			return nil, false
		}
		return StringValue(s), true
	case KindInteger:
		n, ok := parseInteger(payload)
		return IntegerValue(n), ok
	case KindDouble:
		f, ok := parseDouble(payload)
		return DoubleValue(f), ok
	case KindBoolean:
		var b bool
		if json.Unmarshal(payload, &b) != nil {
			return nil, false
		}
		return BooleanValue(b), true
	case KindNull:
		// Presence of the key is what matters.
		return NullValue{}, true
	case KindTimestamp:
		var s string
		if json.Unmarshal(payload, &s) != nil {
			return nil, false
		}
		t, err := time.Parse(TimestampLayout, s)
		if err != nil {
			return nil, false
		}
		return TimestampValue{Time: t}, true
	case KindGeoPoint:
		var gp struct {
			Latitude  json.RawMessage `json:"latitude"`
			Longitude json.RawMessage `json:"longitude"`
		}
		if json.Unmarshal(payload, &gp) != nil {
			return nil, false
		}
		lat, ok := parseCoordinate(gp.Latitude)
		if !ok {
			return nil, false
		}
		lng, ok := parseCoordinate(gp.Longitude)
		if !ok {
			return nil, false
		}
		return GeoPointValue{Latitude: lat, Longitude: lng}, true
	case KindReference:
		var s string
		if json.Unmarshal(payload, &s) != nil {
			return nil, false
		}
		return ReferenceValue(s), true
	case KindMap:
		var m struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		if json.Unmarshal(payload, &m) != nil {
			return nil, false
		}
		if m.Fields == nil {
			return MapValue{}, true
		}
		fields := make(map[string]Value, len(m.Fields))
		for k, raw := range m.Fields {
			fields[k] = parseValue(raw)
		}
		return MapValue{Fields: fields}, true
	case KindArray:
		var a struct {
			Values []json.RawMessage `json:"values"`
		}
		if json.Unmarshal(payload, &a) != nil {
			return nil, false
		}
		values := make([]Value, len(a.Values))
		for i, raw := range a.Values {
			values[i] = parseValue(raw)
		}
		return ArrayValue{Values: values}, true
	}
	return nil, false
}

// parseInteger accepts both the string form the REST API emits and a bare JSON number.
func parseInteger(payload json.RawMessage) (int64, bool) {
	var s string
	if json.Unmarshal(payload, &s) == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	var num json.Number
	if json.Unmarshal(payload, &num) != nil {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseDouble(payload json.RawMessage) (float64, bool) {
	var s string
	if json.Unmarshal(payload, &s) == nil {
		switch s {
		case "NaN":
			return math.NaN(), true
		case "Infinity":
			return math.Inf(1), true
		case "-Infinity":
			return math.Inf(-1), true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	var f float64
	if json.Unmarshal(payload, &f) != nil {
		return 0, false
	}
	return f, true
}

// parseCoordinate treats an absent coordinate as zero, since proto3 JSON omits defaults.
func parseCoordinate(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, true
	}
	return parseDouble(raw)
}
