// Package analyzer infers Go struct declarations from the field shapes of a wire document.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/fsvalue/internal/config"
	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/wire"
)

// DefaultRootName is the default name for the root struct if not specified.
const DefaultRootName = "Document"

// GeoPointStructName names the helper struct emitted for geoPointValue fields.
const GeoPointStructName = "GeoPoint"

// TagKey is the struct tag key used for document field names.
const TagKey = "firestore"

var (
	interfaceType = models.TypeInfo{Kind: models.Interface, Name: "interface{}"}
	nullType      = models.TypeInfo{Kind: models.Interface, Name: "interface{}", IsPointer: true}
)

// Analyzer walks wire values and collects struct definitions

type Analyzer struct {
	// structNames tracks generated struct names to avoid collisions
	structNames    map[string]int
	analysisResult models.AnalysisResult
	config         *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{
		structNames: make(map[string]int),
		analysisResult: models.AnalysisResult{
			Structs: make([]models.StructDef, 0),
			Imports: make(map[string]struct{}),
		},
		config: cfg,
	}
}

// Analyze derives the struct declarations describing doc's fields. The root struct is
// always emitted, even for a document without fields.
func (a *Analyzer) Analyze(doc wire.Document, rootStructName string) (models.AnalysisResult, error) {
	if rootStructName == "" {
		rootStructName = DefaultRootName
	}
	rootStructName = a.generateUniqueStructName(a.goName(rootStructName))

	root, err := a.analyzeFields(doc.Fields, rootStructName)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to analyze document: %w", err)
	}
	root.Name = rootStructName
	root.IsRoot = true
	// The root is prepended so it is never deduplicated into a nested struct.
	a.analysisResult.Structs = append([]models.StructDef{root}, a.analysisResult.Structs...)

	return a.analysisResult, nil
}

// analyzeValue determines the Go type for a single wire value, defining structs as needed.
func (a *Analyzer) analyzeValue(v wire.Value, suggestedName string) (models.TypeInfo, error) {
	switch tv := v.(type) {
	case nil, wire.NullValue:
		return nullType, nil
	case wire.StringValue, wire.ReferenceValue:
		return models.TypeInfo{Kind: models.String, Name: "string"}, nil
	case wire.IntegerValue:
		return models.TypeInfo{Kind: models.Int, Name: "int64"}, nil
	case wire.DoubleValue:
		return models.TypeInfo{Kind: models.Float, Name: "float64"}, nil
	case wire.BooleanValue:
		return models.TypeInfo{Kind: models.Bool, Name: "bool"}, nil
	case wire.TimestampValue:
		a.analysisResult.Imports["time"] = struct{}{}
		return models.TypeInfo{Kind: models.Time, Name: "time.Time"}, nil
	case wire.GeoPointValue:
		return a.geoPointType(), nil
	case wire.MapValue:
		if tv.Fields == nil {
			// decodes to nil, so nothing is known about its shape
			return nullType, nil
		}
		def, err := a.analyzeFields(tv.Fields, suggestedName)
		if err != nil {
			return models.TypeInfo{}, err
		}
		info := a.findOrAddStructDef(def, suggestedName)
		info.IsPointer = true
		return info, nil
	case wire.ArrayValue:
		return a.analyzeArray(tv.Values, suggestedName)
	case wire.UnknownValue:
		return interfaceType, nil
	default:
		return models.TypeInfo{}, fmt.Errorf("unexpected wire value type: %T", v)
	}
}

// analyzeFields builds a candidate struct from a field map. Fields are sorted by key.
func (a *Analyzer) analyzeFields(fields map[string]wire.Value, structName string) (models.StructDef, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	def := models.StructDef{Name: structName, Fields: make([]models.FieldInfo, 0, len(keys))}
	for _, key := range keys {
		goFieldName := a.goName(key)
		fieldType, err := a.analyzeValue(fields[key], structName+goFieldName)
		if err != nil {
			return models.StructDef{}, fmt.Errorf("field '%s' in '%s': %w", key, structName, err)
		}
		def.Fields = append(def.Fields, models.FieldInfo{
			Key:    key,
			GoName: goFieldName,
			GoType: fieldType,
			Tag:    fieldTag(key, fieldType),
		})
	}
	return def, nil
}

func (a *Analyzer) analyzeArray(values []wire.Value, suggestedName string) (models.TypeInfo, error) {
	if len(values) == 0 {
		elem := interfaceType
		return models.TypeInfo{Kind: models.Slice, Name: "[]interface{}", SliceElementType: &elem}, nil
	}

	elementName := singularize(suggestedName)

	// Maps are merged into one element struct covering every key seen.
	if merged, ok := mergeMaps(values); ok {
		def, err := a.analyzeFields(merged, elementName)
		if err != nil {
			return models.TypeInfo{}, fmt.Errorf("array '%s': %w", suggestedName, err)
		}
		elem := a.findOrAddStructDef(def, elementName)
		elem.IsPointer = true
		return models.TypeInfo{Kind: models.Slice, Name: "[]*" + elem.Name, SliceElementType: &elem}, nil
	}

	var first models.TypeInfo
	for i, v := range values {
		info, err := a.analyzeValue(v, elementName)
		if err != nil {
			return models.TypeInfo{}, fmt.Errorf("element %d of array '%s': %w", i, suggestedName, err)
		}
		if i == 0 {
			first = info
			continue
		}
		if !areTypeInfosEqual(&first, &info) {
			elem := interfaceType
			return models.TypeInfo{Kind: models.Slice, Name: "[]interface{}", SliceElementType: &elem}, nil
		}
	}
	return models.TypeInfo{Kind: models.Slice, Name: "[]" + typeString(first), SliceElementType: &first}, nil
}

// mergeMaps unions the fields of array elements when every element is a map with fields.
// The first non-null value seen for a key decides its type.
func mergeMaps(values []wire.Value) (map[string]wire.Value, bool) {
	merged := make(map[string]wire.Value)
	for _, v := range values {
		m, ok := v.(wire.MapValue)
		if !ok || m.Fields == nil {
			return nil, false
		}
		for k, fv := range m.Fields {
			if existing, seen := merged[k]; !seen || isNull(existing) {
				merged[k] = fv
			}
		}
	}
	return merged, true
}

func isNull(v wire.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(wire.NullValue)
	return ok
}

// geoPointType registers the GeoPoint helper struct on first use.
func (a *Analyzer) geoPointType() models.TypeInfo {
	for _, s := range a.analysisResult.Structs {
		if s.Name == GeoPointStructName {
			return models.TypeInfo{Kind: models.Struct, Name: s.Name, StructName: s.Name}
		}
	}
	floatType := models.TypeInfo{Kind: models.Float, Name: "float64"}
	def := models.StructDef{
		Name: GeoPointStructName,
		Fields: []models.FieldInfo{
			{Key: models.LatitudeKey, GoName: "Latitude", GoType: floatType, Tag: fieldTag(models.LatitudeKey, floatType)},
			{Key: models.LongitudeKey, GoName: "Longitude", GoType: floatType, Tag: fieldTag(models.LongitudeKey, floatType)},
		},
	}
	a.structNames[GeoPointStructName]++
	a.analysisResult.Structs = append(a.analysisResult.Structs, def)
	return models.TypeInfo{Kind: models.Struct, Name: GeoPointStructName, StructName: GeoPointStructName}
}

// findOrAddStructDef returns the TypeInfo of an equivalent existing struct, or registers
// the candidate under a unique name.
func (a *Analyzer) findOrAddStructDef(candidate models.StructDef, suggestedName string) models.TypeInfo {
	for _, existing := range a.analysisResult.Structs {
		if areStructDefsEquivalent(&candidate, &existing) {
			return models.TypeInfo{Kind: models.Struct, Name: existing.Name, StructName: existing.Name}
		}
	}

	candidate.Name = a.generateUniqueStructName(suggestedName)
	a.analysisResult.Structs = append(a.analysisResult.Structs, candidate)
	return models.TypeInfo{Kind: models.Struct, Name: candidate.Name, StructName: candidate.Name}
}

// generateUniqueStructName ensures that the struct name is unique by appending a number if needed.
func (a *Analyzer) generateUniqueStructName(baseName string) string {
	name := baseName
	count := a.structNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.structNames[baseName] = count + 1
	return name
}

// goName maps a field key to an exported Go identifier.
func (a *Analyzer) goName(key string) string {
	name := a.config.GetFieldName(key)
	if name == "" {
		return "Field"
	}
	if c := name[0]; c >= '0' && c <= '9' {
		return "F" + name
	}
	return name
}

func fieldTag(key string, t models.TypeInfo) string {
	omit := ""
	if t.IsPointer || t.Kind == models.Slice || t.Kind == models.Interface {
		omit = ",omitempty"
	}
	return fmt.Sprintf("`%s:\"%s%s\"`", TagKey, key, omit)
}

func typeString(t models.TypeInfo) string {
	if t.IsPointer {
		return "*" + t.Name
	}
	return t.Name
}

var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"children":  "child",
	"people":    "person",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

// singularize turns a plural struct-name suffix into its singular form.
func singularize(plural string) string {
	lower := strings.ToLower(plural)
	for p, s := range knownSingulars {
		if strings.HasSuffix(lower, p) {
			cut := len(plural) - len(p)
			return plural[:cut] + matchCase(plural[cut:], s)
		}
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return plural[:len(plural)-3] + "y"
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
		return plural
	case strings.HasSuffix(lower, "s") && len(lower) > 1:
		return plural[:len(plural)-1]
	}
	return plural
}

// matchCase capitalises replacement when original starts with an upper-case letter.
func matchCase(original, replacement string) string {
	if original != "" && replacement != "" && strings.ToUpper(original[:1]) == original[:1] {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}

// areTypeInfosEqual checks if two TypeInfo objects represent the same type.
func areTypeInfosEqual(t1, t2 *models.TypeInfo) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}
	if t1.Kind != t2.Kind || t1.Name != t2.Name || t1.IsPointer != t2.IsPointer || t1.StructName != t2.StructName {
		return false
	}
	if t1.Kind == models.Slice {
		return areTypeInfosEqual(t1.SliceElementType, t2.SliceElementType)
	}
	return true
}

// areStructDefsEquivalent compares two StructDefs by key, Go name, type and tag.
func areStructDefsEquivalent(s1, s2 *models.StructDef) bool {
	if s1 == nil || s2 == nil {
		return s1 == s2
	}
	if len(s1.Fields) != len(s2.Fields) {
		return false
	}

	byKey := make(map[string]models.FieldInfo, len(s1.Fields))
	for _, f := range s1.Fields {
		byKey[f.Key] = f
	}
	for _, f2 := range s2.Fields {
		f1, ok := byKey[f2.Key]
		if !ok {
			return false
		}
		if f1.GoName != f2.GoName || f1.Tag != f2.Tag || !areTypeInfosEqual(&f1.GoType, &f2.GoType) {
			return false
		}
	}
	return true
}
