package wire

import (
	"encoding/json"
	"fmt"

	"github.com/mcncl/fsvalue/internal/errors"
)

// Document is a Firestore REST document: a resource name plus tagged fields.
// CreateTime and UpdateTime are carried through untouched.
type Document struct {
	Name       string
	Fields     map[string]Value
	CreateTime string
	UpdateTime string
}

type documentJSON struct {
	Name       string                     `json:"name,omitempty"`
	Fields     map[string]json.RawMessage `json:"fields,omitempty"`
	CreateTime string                     `json:"createTime,omitempty"`
	UpdateTime string                     `json:"updateTime,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	out := struct {
		Name       string           `json:"name,omitempty"`
		Fields     map[string]Value `json:"fields,omitempty"`
		CreateTime string           `json:"createTime,omitempty"`
		UpdateTime string           `json:"updateTime,omitempty"`
	}{
		Name:       d.Name,
		CreateTime: d.CreateTime,
		UpdateTime: d.UpdateTime,
	}
	if d.Fields != nil {
		out.Fields = sanitize(d.Fields)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Field values that are not well-formed
// wire values become UnknownValue rather than failing the whole document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Name = raw.Name
	d.CreateTime = raw.CreateTime
	d.UpdateTime = raw.UpdateTime
	d.Fields = nil
	if raw.Fields != nil {
		d.Fields = make(map[string]Value, len(raw.Fields))
		for k, v := range raw.Fields {
			d.Fields[k] = parseValue(v)
		}
	}
	return nil
}

// UnmarshalDocument parses a JSON wire document.
func UnmarshalDocument(data []byte) (Document, error) {
	if err := checkSyntax(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.NewParsingError(fmt.Sprintf("not a document: %v", err), errors.ErrInvalidJSON)
	}
	return doc, nil
}
