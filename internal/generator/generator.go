package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/fsvalue/internal/models"
)

// Generator renders analysis results as Go source
type Generator struct {
	// Header is written as a line comment above the package clause when set.
	Header string
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateStructs generates Go struct definitions from the analysis result
func (g *Generator) GenerateStructs(result models.AnalysisResult, packageName string) (string, error) {
	if packageName == "" {
		return "", fmt.Errorf("package name is empty")
	}
	if len(result.Structs) == 0 {
		return "", fmt.Errorf("nothing to generate")
	}

	var buf bytes.Buffer

	if g.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(g.Header, "\n"), "\n") {
			fmt.Fprintf(&buf, "// %s\n", line)
		}
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "package %s\n", packageName)

	writeImports(&buf, result.Imports)

	for _, structDef := range sortStructs(result.Structs) {
		buf.WriteString("\n")
		writeStruct(&buf, structDef)
	}

	return buf.String(), nil
}

// writeImports writes standard library imports first, then third-party ones
func writeImports(buf *bytes.Buffer, set map[string]struct{}) {
	if len(set) == 0 {
		return
	}

	imports := make([]string, 0, len(set))
	for imp := range set {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	var stdLib, thirdParty []string
	for _, imp := range imports {
		// Standard library imports don't have dots
		if !strings.Contains(imp, ".") {
			stdLib = append(stdLib, imp)
		} else {
			thirdParty = append(thirdParty, imp)
		}
	}

	buf.WriteString("\nimport (\n")
	for _, imp := range stdLib {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	if len(stdLib) > 0 && len(thirdParty) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdParty {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	buf.WriteString(")\n")
}

func writeStruct(buf *bytes.Buffer, def models.StructDef) {
	fields := make([]models.FieldInfo, len(def.Fields))
	copy(fields, def.Fields)
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].GoName < fields[j].GoName
	})

	if len(fields) == 0 {
		fmt.Fprintf(buf, "type %s struct{}\n", def.Name)
		return
	}

	maxNameWidth, maxTypeWidth := 0, 0
	for _, field := range fields {
		if n := len(field.GoName); n > maxNameWidth {
			maxNameWidth = n
		}
		if n := len(getTypeString(field.GoType)); n > maxTypeWidth {
			maxTypeWidth = n
		}
	}

	fmt.Fprintf(buf, "type %s struct {\n", def.Name)
	for _, field := range fields {
		fmt.Fprintf(buf, "\t%-*s %-*s %s\n",
			maxNameWidth, field.GoName,
			maxTypeWidth, getTypeString(field.GoType),
			field.Tag)
	}
	buf.WriteString("}\n")
}

// sortStructs puts the root struct first, followed by the rest by name
func sortStructs(structs []models.StructDef) []models.StructDef {
	sorted := make([]models.StructDef, len(structs))
	copy(sorted, structs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsRoot != sorted[j].IsRoot {
			return sorted[i].IsRoot
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

// getTypeString converts a TypeInfo to a string representation of the Go type
func getTypeString(typeInfo models.TypeInfo) string {
	var typeStr string

	switch typeInfo.Kind {
	case models.Struct:
		typeStr = typeInfo.StructName
	case models.Slice:
		if typeInfo.SliceElementType != nil {
			typeStr = "[]" + getTypeString(*typeInfo.SliceElementType)
		} else {
			typeStr = "[]interface{}"
		}
	default:
		typeStr = typeInfo.Name
	}

	if typeInfo.IsPointer {
		return "*" + typeStr
	}
	return typeStr
}
