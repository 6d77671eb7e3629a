package convert

import (
	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/resource"
	"github.com/mcncl/fsvalue/internal/wire"
)

// IDField is the member DecodeDocument adds to carry the document identifier.
const IDField = "id"

// EncodeDocument encodes every field of a native record. Keys pass through unchanged.
// The returned document has no name; identity is assigned by the caller.
func EncodeDocument(fields map[string]any) (wire.Document, error) {
	if fields == nil {
		return wire.Document{}, nil
	}
	encoded := make(map[string]wire.Value, len(fields))
	for k, v := range fields {
		ev, err := Encode(v)
		if err != nil {
			return wire.Document{}, err
		}
		encoded[k] = ev
	}
	return wire.Document{Fields: encoded}, nil
}

// DecodeDocument decodes a wire document using literal mode.
func DecodeDocument(doc wire.Document) models.Object {
	return defaultDecoder.DecodeDocument(doc)
}

// DecodeDocument decodes every field and adds IDField, taken from the last segment of
// the document's resource name. An "id" field in the document is overwritten.
func (d *Decoder) DecodeDocument(doc wire.Document) models.Object {
	out := make(models.Object, len(doc.Fields)+1)
	for k, fv := range doc.Fields {
		out[k] = d.Decode(fv)
	}
	out[IDField] = resource.ID(doc.Name)
	return out
}
