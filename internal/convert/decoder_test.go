package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ts := time.Date(2023, 5, 20, 14, 56, 23, 0, time.UTC)

	tests := []struct {
		name     string
		input    wire.Value
		expected any
	}{
		{name: "string", input: wire.StringValue("x"), expected: "x"},
		{name: "integer", input: wire.IntegerValue(42), expected: int64(42)},
		{name: "double", input: wire.DoubleValue(0.25), expected: 0.25},
		{name: "boolean", input: wire.BooleanValue(true), expected: true},
		{name: "null", input: wire.NullValue{}, expected: nil},
		{name: "timestamp", input: wire.Timestamp(ts), expected: ts},
		{
			name:     "geo-point literal",
			input:    wire.GeoPointValue{Latitude: 35, Longitude: 139},
			expected: models.Object{"geoPointValue": models.Object{"latitude": 35.0, "longitude": 139.0}},
		},
		{
			name:     "reference literal",
			input:    wire.ReferenceValue("projects/p/databases/(default)/documents/c/d"),
			expected: models.Object{"referenceValue": "projects/p/databases/(default)/documents/c/d"},
		},
		{
			name: "map",
			input: wire.MapValue{Fields: map[string]wire.Value{
				"n": wire.StringValue("x"),
				"m": wire.MapValue{Fields: map[string]wire.Value{"k": wire.BooleanValue(false)}},
			}},
			expected: models.Object{"n": "x", "m": models.Object{"k": false}},
		},
		{name: "empty map", input: wire.Map(nil), expected: models.Object{}},
		{name: "map without fields", input: wire.MapValue{}, expected: nil},
		{
			name: "array",
			input: wire.ArrayValue{Values: []wire.Value{
				wire.IntegerValue(1), wire.StringValue("b"), wire.NullValue{},
			}},
			expected: models.Array{int64(1), "b", nil},
		},
		{name: "array without values", input: wire.ArrayValue{}, expected: models.Array{}},
		{name: "unknown", input: wire.UnknownValue{Raw: json.RawMessage(`{"bytesValue":"AAE="}`)}, expected: nil},
		{name: "nil", input: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decode(tt.input))
		})
	}
}

func TestDecode_HandleMode(t *testing.T) {
	d := NewDecoder(ModeHandle)
	assert.Equal(t, ModeHandle, d.Mode())

	assert.Equal(t,
		models.GeoPoint{Latitude: 35, Longitude: 139},
		d.Decode(wire.GeoPointValue{Latitude: 35, Longitude: 139}))
	assert.Equal(t,
		models.Reference{Name: "projects/p/databases/(default)/documents/c/d"},
		d.Decode(wire.ReferenceValue("projects/p/databases/(default)/documents/c/d")))

	nested := d.Decode(wire.ArrayValue{Values: []wire.Value{wire.ReferenceValue("r")}})
	assert.Equal(t, models.Array{models.Reference{Name: "r"}}, nested)
}

func TestDecode_FromJSON(t *testing.T) {
	v, err := wire.Unmarshal([]byte(`{"mapValue":{"fields":{
		"count":{"integerValue":"7"},
		"ratio":{"doubleValue":0.5},
		"when":{"timestampValue":"2023-05-20T14:56:23.5Z"},
		"mixed":{"stringValue":"x","integerValue":"1"},
		"extra":{"booleanValue":true,"note":"ignored"},
		"bad":{"oops":1}
	}}}`))
	require.NoError(t, err)

	got := Decode(v)
	obj, ok := got.(models.Object)
	require.True(t, ok, "expected object, got %T", got)
	assert.Equal(t, int64(7), obj["count"])
	assert.Equal(t, 0.5, obj["ratio"])
	assert.Equal(t, time.Date(2023, 5, 20, 14, 56, 23, 500000000, time.UTC), obj["when"])
	assert.Equal(t, "x", obj["mixed"], "the first discriminator in precedence order wins")
	assert.Equal(t, true, obj["extra"])
	assert.Contains(t, obj, "bad")
	assert.Nil(t, obj["bad"], "values without a recognised discriminator decode to nil")
}

func TestParseSpecialValueMode(t *testing.T) {
	tests := []struct {
		input    string
		expected SpecialValueMode
		wantErr  bool
	}{
		{input: "", expected: ModeLiteral},
		{input: "literal", expected: ModeLiteral},
		{input: " Handle ", expected: ModeHandle},
		{input: "opaque", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSpecialValueMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	assert.Equal(t, ModeLiteral, NewDecoder("bogus").Mode())
}
