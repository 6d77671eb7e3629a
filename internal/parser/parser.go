package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/fsvalue/internal/errors" // Custom errors package
	"github.com/mcncl/fsvalue/internal/models"
)

// Options controls how native JSON input is interpreted.
type Options struct {
	// DetectTimes turns strings that look like RFC 3339 / ISO 8601 timestamps into time.Time.
	DetectTimes bool
}

// Time format patterns (ordered by specificity - most specific first)
var timeLayouts = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`), time.RFC3339Nano},    // 2006-01-02T15:04:05.999999999Z
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?[+-]\d{4}$`), "2006-01-02T15:04:05.999999999-0700"}, // ISO8601 numeric offset
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`), "2006-01-02T15:04:05.999999999"},              // ISO8601 without zone, read as UTC
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	return ParseWithOptions(reader, Options{})
}

// ParseWithOptions is Parse with explicit options.
func ParseWithOptions(reader io.Reader, opts Options) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // keep integers exact so 2^53+1 stays an integerValue

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	// Only whitespace may follow the first value.
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
			}
		} else {
			return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	rootValue = normalizeJSONValue(rootValue, opts)
	_, isArray := rootValue.(models.Array)
	return models.IntermediateRepresentation{
		Root:        rootValue,
		RootIsArray: isArray,
	}, nil
}

// normalizeJSONValue converts raw JSON types into our model types
func normalizeJSONValue(val models.JSONValue, opts Options) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(models.Object, len(v))
		for key, value := range v {
			obj[key] = normalizeJSONValue(value, opts)
		}
		return obj
	case []interface{}:
		arr := make(models.Array, len(v))
		for i, value := range v {
			arr[i] = normalizeJSONValue(value, opts)
		}
		return arr
	case string:
		if opts.DetectTimes {
			if t, ok := ParseTime(v); ok {
				return t
			}
		}
		return v
	default:
		return v // json.Number, bool and nil are returned as is
	}
}

// ParseTime recognises the timestamp formats accepted by DetectTimes.
func ParseTime(s string) (time.Time, bool) {
	for _, tl := range timeLayouts {
		if !tl.pattern.MatchString(s) {
			continue
		}
		t, err := time.Parse(tl.layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseStringWithOptions(jsonString, Options{})
}

// ParseStringWithOptions is ParseString with explicit options.
func ParseStringWithOptions(jsonString string, opts Options) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseWithOptions(strings.NewReader(jsonString), opts)
}

// ReadFile reads a whole input file, reporting missing and empty files distinctly.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts Options) (models.IntermediateRepresentation, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return ParseWithOptions(strings.NewReader(string(data)), opts)
}
