package convert

import (
	"fmt"
	"strings"

	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/wire"
)

// SpecialValueMode selects how references and geo-points are decoded.
type SpecialValueMode string

const (
	// ModeLiteral decodes to the plain-object literals the encoder recognises,
	// e.g. models.Object{"referenceValue": "projects/..."}.
	ModeLiteral SpecialValueMode = "literal"
	// ModeHandle decodes to models.Reference and models.GeoPoint.
	ModeHandle SpecialValueMode = "handle"
)

// ParseSpecialValueMode validates a mode name. The empty string selects ModeLiteral.
func ParseSpecialValueMode(s string) (SpecialValueMode, error) {
	switch SpecialValueMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLiteral:
		return ModeLiteral, nil
	case ModeHandle:
		return ModeHandle, nil
	}
	return "", fmt.Errorf("unknown special value mode %q: want %q or %q", s, ModeLiteral, ModeHandle)
}

// Decoder converts wire values into native values.
type Decoder struct {
	mode SpecialValueMode
}

// NewDecoder creates a Decoder. An unknown mode falls back to ModeLiteral.
func NewDecoder(mode SpecialValueMode) *Decoder {
	if mode != ModeHandle {
		mode = ModeLiteral
	}
	return &Decoder{mode: mode}
}

// Mode reports the decoder's special value mode.
func (d *Decoder) Mode() SpecialValueMode {
	return d.mode
}

var defaultDecoder = NewDecoder(ModeLiteral)

// Decode converts v using literal mode for references and geo-points.
func Decode(v wire.Value) any {
	return defaultDecoder.Decode(v)
}

// Decode converts a wire value to its native form. Unknown or empty input yields nil.
func (d *Decoder) Decode(v wire.Value) any {
	switch tv := v.(type) {
	case wire.StringValue:
		return string(tv)
	case wire.IntegerValue:
		return int64(tv)
	case wire.DoubleValue:
		return float64(tv)
	case wire.BooleanValue:
		return bool(tv)
	case wire.NullValue:
		return nil
	case wire.TimestampValue:
		return tv.Time
	case wire.GeoPointValue:
		if d.mode == ModeHandle {
			return models.GeoPoint{Latitude: tv.Latitude, Longitude: tv.Longitude}
		}
		return models.GeoPointLiteral(tv.Latitude, tv.Longitude)
	case wire.ReferenceValue:
		if d.mode == ModeHandle {
			return models.Reference{Name: string(tv)}
		}
		return models.ReferenceLiteral(string(tv))
	case wire.MapValue:
		// A map without its fields member carries nothing to decode.
		if tv.Fields == nil {
			return nil
		}
		return d.decodeFields(tv.Fields)
	case wire.ArrayValue:
		out := make(models.Array, len(tv.Values))
		for i, elem := range tv.Values {
			out[i] = d.Decode(elem)
		}
		return out
	default:
		return nil
	}
}

func (d *Decoder) decodeFields(fields map[string]wire.Value) models.Object {
	out := make(models.Object, len(fields))
	for k, fv := range fields {
		out[k] = d.Decode(fv)
	}
	return out
}
