// Package output renders conversion results as JSON, YAML or CBOR.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/mcncl/fsvalue/internal/errors"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// DefaultIndent is the indent width used when none is configured.
const DefaultIndent = 2

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", JSON:
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	case CBOR:
		return CBOR, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, s)
}

// IsBinary reports whether the format should not be written to a terminal as text.
func (f Format) IsBinary() bool {
	return f == CBOR
}

// cborMode uses Core Deterministic Encoding so equal inputs produce identical bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("output: CBOR encoder initialization failed: " + err.Error())
	}
}

// Renderer serialises values in one format. The JSON form is canonical: YAML and CBOR
// are derived from it, so wire values keep their exact key names and payload types.
type Renderer struct {
	format Format
	indent int
}

// NewRenderer creates a Renderer. A negative indent selects DefaultIndent; zero
// produces compact JSON.
func NewRenderer(format Format, indent int) *Renderer {
	if indent < 0 {
		indent = DefaultIndent
	}
	return &Renderer{format: format, indent: indent}
}

// Format reports the renderer's format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render serialises v.
func (r *Renderer) Render(v any) ([]byte, error) {
	switch r.format {
	case JSON, "":
		return r.renderJSON(v)
	case YAML:
		return r.renderYAML(v)
	case CBOR:
		return r.renderCBOR(v)
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, r.format)
}

func (r *Renderer) renderJSON(v any) ([]byte, error) {
	if r.indent == 0 {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", strings.Repeat(" ", r.indent))
}

func (r *Renderer) renderYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	// JSON is valid YAML; going through a yaml.Node keeps key order and quoting intact.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := r.indent
	if indent == 0 {
		indent = DefaultIndent
	}
	enc.SetIndent(indent)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resetStyle drops the JSON presentation: collections become block style and strings
// lose their quotes unless the plain form would read back as another type.
func resetStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style &^= yaml.FlowStyle
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			n.Style &^= yaml.DoubleQuotedStyle
		}
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func (r *Renderer) renderCBOR(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return cborMode.Marshal(numbers(tree))
}

// numbers replaces json.Number with int64 or float64 so CBOR carries real numbers.
func numbers(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		for k, e := range tv {
			tv[k] = numbers(e)
		}
		return tv
	case []any:
		for i, e := range tv {
			tv[i] = numbers(e)
		}
		return tv
	case json.Number:
		if n, err := tv.Int64(); err == nil {
			return n
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	default:
		return v
	}
}
