package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcncl/fsvalue/internal/analyzer"
	"github.com/mcncl/fsvalue/internal/convert"
	"github.com/mcncl/fsvalue/internal/errors"
	"github.com/mcncl/fsvalue/internal/formatter"
	"github.com/mcncl/fsvalue/internal/generator"
	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/parser"
	"github.com/mcncl/fsvalue/internal/wire"
)

// EncodeCmd converts native JSON into a single wire value
type EncodeCmd struct{}

func (cmd *EncodeCmd) Run(ctx *Context) error {
	ir, err := ctx.parseNative()
	if err != nil {
		return err
	}

	v, err := convert.Encode(ir.Root)
	if err != nil {
		return errors.NewEncodeError("failed to encode value", err)
	}
	ctx.Logger.Debug("encoded value", "kind", v.Kind(), "rule", convert.RuleFor(ir.Root))
	return ctx.emit(v)
}

// DecodeCmd converts a wire value back into native JSON
type DecodeCmd struct {
	Strict bool `help:"Fail on input that is not a recognised wire value instead of decoding it to null."`
}

func (cmd *DecodeCmd) Run(ctx *Context) error {
	data, err := ctx.readInput()
	if err != nil {
		return err
	}

	v, err := wire.Unmarshal(data)
	if err != nil {
		return err
	}
	if _, unknown := v.(wire.UnknownValue); unknown {
		if cmd.Strict {
			return errors.NewDecodeError("failed to decode value", errors.ErrNotAWireValue)
		}
		ctx.Logger.Warn("input is not a recognised wire value, decoding to null")
	}

	return ctx.emit(ctx.decoder().Decode(v))
}

// EncodeDocCmd converts a native JSON object into a wire document
type EncodeDocCmd struct {
	Name       string `help:"Document path or full resource name to assign, e.g. users/alice." xor:"identity"`
	Collection string `help:"Collection to create a document name in, with a generated ID." xor:"identity"`
}

func (cmd *EncodeDocCmd) Run(ctx *Context) error {
	ir, err := ctx.parseNative()
	if err != nil {
		return err
	}
	fields, ok := ir.Root.(models.Object)
	if !ok {
		return errors.NewInputError(fmt.Sprintf("expected a JSON object, got %s", describe(ir)), errors.ErrNotAnObject)
	}

	doc, err := convert.EncodeDocument(fields)
	if err != nil {
		return errors.NewEncodeError("failed to encode document", err)
	}

	client := ctx.Config.Client()
	switch {
	case cmd.Name != "":
		doc.Name, err = client.ResourceName(cmd.Name)
	case cmd.Collection != "":
		doc.Name, err = client.NewDocumentName(cmd.Collection)
	}
	if err != nil {
		return errors.NewEncodeError("failed to build document name", err)
	}
	ctx.Logger.Debug("encoded document", "name", doc.Name, "fields", len(doc.Fields))

	return ctx.emit(doc)
}

// DecodeDocCmd converts a wire document into a native object carrying its id
type DecodeDocCmd struct{}

func (cmd *DecodeDocCmd) Run(ctx *Context) error {
	doc, err := ctx.readDocument()
	if err != nil {
		return err
	}
	return ctx.emit(ctx.decoder().DecodeDocument(doc))
}

// ShapeCmd derives Go struct declarations from a wire document
type ShapeCmd struct {
	Package  string `help:"Package name for generated code." short:"p"`
	RootName string `help:"Name for the root struct." short:"r"`
	NoFormat bool   `help:"Skip gofmt-style formatting of the generated code."`
}

func (cmd *ShapeCmd) Run(ctx *Context) error {
	doc, err := ctx.readDocument()
	if err != nil {
		return err
	}

	cfg := ctx.Config
	if cmd.Package != "" {
		cfg.Shape.Package = cmd.Package
	}
	if cmd.RootName != "" {
		cfg.Shape.RootName = cmd.RootName
	}

	result, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc, cfg.Shape.RootName)
	if err != nil {
		return errors.NewGenerateError("failed to analyze document fields", err)
	}
	ctx.Logger.Debug("analyzed document", "structs", len(result.Structs))

	gen := generator.NewGenerator()
	if doc.Name != "" {
		gen.Header = fmt.Sprintf("%s describes documents shaped like %s.", result.Structs[0].Name, doc.Name)
	}
	code, err := gen.GenerateStructs(result, cfg.Shape.Package)
	if err != nil {
		return errors.NewGenerateError("failed to generate Go structs", err)
	}

	if cfg.Shape.Format && !cmd.NoFormat {
		code, err = formatter.NewFormatter().Format(code)
		if err != nil {
			return errors.NewFormatError("failed to format Go code", err)
		}
	}

	return ctx.writeOutput([]byte(strings.TrimSpace(code) + "\n"))
}

// VersionCmd prints the version
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "fsvalue version %s\n", Version)
	return err
}

// parseNative reads and parses native JSON input
func (c *Context) parseNative() (models.IntermediateRepresentation, error) {
	data, err := c.readInput()
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return parser.ParseStringWithOptions(string(data), parser.Options{DetectTimes: c.Config.DetectTimes})
}

// readDocument reads and parses a wire document
func (c *Context) readDocument() (wire.Document, error) {
	data, err := c.readInput()
	if err != nil {
		return wire.Document{}, err
	}
	doc, err := wire.UnmarshalDocument(data)
	if err != nil {
		return wire.Document{}, err
	}
	c.Logger.Debug("read document", "name", doc.Name, "fields", len(doc.Fields))
	return doc, nil
}

func (c *Context) decoder() *convert.Decoder {
	return convert.NewDecoder(c.Config.SpecialValueMode())
}

func describe(ir models.IntermediateRepresentation) string {
	switch ir.Root.(type) {
	case models.Array:
		return "an array"
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	default:
		return "a scalar"
	}
}
