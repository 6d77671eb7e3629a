package generator

import (
	"testing"
	"time"

	"github.com/mcncl/fsvalue/internal/analyzer"
	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStructs_SimpleStruct(t *testing.T) {
	analysisResult := models.AnalysisResult{
		Structs: []models.StructDef{
			{
				Name:   "Person",
				IsRoot: true,
				Fields: []models.FieldInfo{
					{Key: "name", GoName: "Name", GoType: models.TypeInfo{Kind: models.String, Name: "string"}, Tag: "`firestore:\"name\"`"},
					{Key: "age", GoName: "Age", GoType: models.TypeInfo{Kind: models.Int, Name: "int64"}, Tag: "`firestore:\"age\"`"},
					{Key: "is_active", GoName: "IsActive", GoType: models.TypeInfo{Kind: models.Bool, Name: "bool"}, Tag: "`firestore:\"is_active\"`"},
				},
			},
		},
		Imports: map[string]struct{}{},
	}

	result, err := NewGenerator().GenerateStructs(analysisResult, "main")
	require.NoError(t, err)

	expectedCode := `package main

type Person struct {
	Age      int64  ` + "`firestore:\"age\"`" + `
	IsActive bool   ` + "`firestore:\"is_active\"`" + `
	Name     string ` + "`firestore:\"name\"`" + `
}
`
	assert.Equal(t, expectedCode, result)
}

func TestGenerateStructs_NestedWithImports(t *testing.T) {
	analysisResult := models.AnalysisResult{
		Structs: []models.StructDef{
			{
				Name: "DocProfile",
				Fields: []models.FieldInfo{
					{Key: "city", GoName: "City", GoType: models.TypeInfo{Kind: models.String, Name: "string"}, Tag: "`firestore:\"city\"`"},
				},
			},
			{
				Name:   "Doc",
				IsRoot: true,
				Fields: []models.FieldInfo{
					{Key: "profile", GoName: "Profile", GoType: models.TypeInfo{Kind: models.Struct, Name: "DocProfile", StructName: "DocProfile", IsPointer: true}, Tag: "`firestore:\"profile,omitempty\"`"},
					{Key: "created", GoName: "CreatedAt", GoType: models.TypeInfo{Kind: models.Time, Name: "time.Time"}, Tag: "`firestore:\"created\"`"},
					{Key: "name", GoName: "Name", GoType: models.TypeInfo{Kind: models.String, Name: "string"}, Tag: "`firestore:\"name\"`"},
				},
			},
		},
		Imports: map[string]struct{}{"time": {}, "example.com/geo": {}},
	}

	result, err := NewGenerator().GenerateStructs(analysisResult, "models")
	require.NoError(t, err)

	expectedCode := `package models

import (
	"time"

	"example.com/geo"
)

type Doc struct {
	CreatedAt time.Time   ` + "`firestore:\"created\"`" + `
	Name      string      ` + "`firestore:\"name\"`" + `
	Profile   *DocProfile ` + "`firestore:\"profile,omitempty\"`" + `
}

type DocProfile struct {
	City string ` + "`firestore:\"city\"`" + `
}
`
	assert.Equal(t, expectedCode, result)
}

func TestGenerateStructs_Header(t *testing.T) {
	gen := NewGenerator()
	gen.Header = "Code generated by fsvalue shape. DO NOT EDIT."

	result, err := gen.GenerateStructs(models.AnalysisResult{
		Structs: []models.StructDef{{Name: "Empty", IsRoot: true}},
	}, "main")
	require.NoError(t, err)

	assert.Equal(t, "// Code generated by fsvalue shape. DO NOT EDIT.\n\npackage main\n\ntype Empty struct{}\n", result)
}

func TestGenerateStructs_Errors(t *testing.T) {
	_, err := NewGenerator().GenerateStructs(models.AnalysisResult{}, "main")
	assert.Error(t, err)

	_, err = NewGenerator().GenerateStructs(models.AnalysisResult{
		Structs: []models.StructDef{{Name: "X", IsRoot: true}},
	}, "")
	assert.Error(t, err)
}

func TestGetTypeString(t *testing.T) {
	item := models.TypeInfo{Kind: models.Struct, Name: "Item", StructName: "Item", IsPointer: true}
	inner := models.TypeInfo{Kind: models.Slice, Name: "[]int64", SliceElementType: &models.TypeInfo{Kind: models.Int, Name: "int64"}}

	tests := []struct {
		name     string
		input    models.TypeInfo
		expected string
	}{
		{name: "scalar", input: models.TypeInfo{Kind: models.Float, Name: "float64"}, expected: "float64"},
		{name: "null", input: models.TypeInfo{Kind: models.Interface, Name: "interface{}", IsPointer: true}, expected: "*interface{}"},
		{name: "slice of struct pointers", input: models.TypeInfo{Kind: models.Slice, SliceElementType: &item}, expected: "[]*Item"},
		{name: "nested slice", input: models.TypeInfo{Kind: models.Slice, SliceElementType: &inner}, expected: "[][]int64"},
		{name: "untyped slice", input: models.TypeInfo{Kind: models.Slice}, expected: "[]interface{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getTypeString(tt.input))
		})
	}
}

func TestIntegration_AnalyzerGenerator(t *testing.T) {
	doc := wire.Document{Fields: map[string]wire.Value{
		"user_id":    wire.IntegerValue(123),
		"username":   wire.StringValue("johndoe"),
		"last_login": wire.Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
		"home":       wire.GeoPointValue{Latitude: 1, Longitude: 2},
		"profile": wire.Map(map[string]wire.Value{
			"email": wire.StringValue("john.doe@example.com"),
		}),
	}}

	analysisResult, err := analyzer.NewAnalyzer().Analyze(doc, "User")
	require.NoError(t, err)

	generatedCode, err := NewGenerator().GenerateStructs(analysisResult, "main")
	require.NoError(t, err)

	expectedCode := `package main

import (
	"time"
)

type User struct {
	Home      GeoPoint     ` + "`firestore:\"home\"`" + `
	LastLogin time.Time    ` + "`firestore:\"last_login\"`" + `
	Profile   *UserProfile ` + "`firestore:\"profile,omitempty\"`" + `
	UserId    int64        ` + "`firestore:\"user_id\"`" + `
	Username  string       ` + "`firestore:\"username\"`" + `
}

type GeoPoint struct {
	Latitude  float64 ` + "`firestore:\"latitude\"`" + `
	Longitude float64 ` + "`firestore:\"longitude\"`" + `
}

type UserProfile struct {
	Email string ` + "`firestore:\"email\"`" + `
}
`
	assert.Equal(t, expectedCode, generatedCode)
}
