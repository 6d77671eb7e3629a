package formatter

import (
	"testing"

	"github.com/mcncl/fsvalue/internal/analyzer"
	"github.com/mcncl/fsvalue/internal/convert"
	"github.com/mcncl/fsvalue/internal/generator"
	"github.com/mcncl/fsvalue/internal/models"
	"github.com/mcncl/fsvalue/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_AlignsFields(t *testing.T) {
	input := `package main

type Person struct {
Name string ` + "`firestore:\"name\"`" + `
Age int64 ` + "`firestore:\"age\"`" + `
IsActive bool ` + "`firestore:\"is_active\"`" + `
}
`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)

	expectedOutput := `package main

type Person struct {
	Name     string ` + "`firestore:\"name\"`" + `
	Age      int64  ` + "`firestore:\"age\"`" + `
	IsActive bool   ` + "`firestore:\"is_active\"`" + `
}
`
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_GroupsImports(t *testing.T) {
	input := `package main

import (
"time"
"example.com/geo"
"encoding/json"
)

type Event struct {
At time.Time ` + "`firestore:\"at\"`" + `
Where geo.Point ` + "`firestore:\"where\"`" + `
Raw json.RawMessage ` + "`firestore:\"raw\"`" + `
}
`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)

	expectedOutput := `package main

import (
	"encoding/json"
	"time"

	"example.com/geo"
)

type Event struct {
	At    time.Time       ` + "`firestore:\"at\"`" + `
	Where geo.Point       ` + "`firestore:\"where\"`" + `
	Raw   json.RawMessage ` + "`firestore:\"raw\"`" + `
}
`
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_InvalidCode(t *testing.T) {
	input := `package main

type Person struct {
	Name string ` + "`firestore:\"name\"`" + `
`

	_, err := NewFormatter().Format(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestFormat_EmptyInput(t *testing.T) {
	formatted, err := NewFormatter().Format("  \n")
	require.NoError(t, err)
	assert.Equal(t, "", formatted)
}

func TestFormat_PreservesComments(t *testing.T) {
	input := `// Code generated by fsvalue shape. DO NOT EDIT.

package main

// Person is a document in the people collection
type Person struct {
	// Name of the person
	Name string ` + "`firestore:\"name\"`" + `
}
`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}

func TestIntegration_NativeToFormattedStruct(t *testing.T) {
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"rating": 4.5,
		"joined": "2024-01-02T03:04:05Z",
		"home": {"geoPointValue": {"latitude": 1.5, "longitude": 2.5}},
		"profile": {"email": "john.doe@example.com"},
		"tags": ["a", "b"]
	}`

	ir, err := parser.ParseStringWithOptions(jsonInput, parser.Options{DetectTimes: true})
	require.NoError(t, err)

	doc, err := convert.EncodeDocument(ir.Root.(models.Object))
	require.NoError(t, err)

	analysisResult, err := analyzer.NewAnalyzer().Analyze(doc, "User")
	require.NoError(t, err)

	generatedCode, err := generator.NewGenerator().GenerateStructs(analysisResult, "main")
	require.NoError(t, err)

	formattedCode, err := NewFormatter().Format(generatedCode)
	require.NoError(t, err)

	assert.Contains(t, formattedCode, "package main")
	assert.Contains(t, formattedCode, "type User struct")
	assert.Contains(t, formattedCode, "type UserProfile struct")
	assert.Contains(t, formattedCode, "type GeoPoint struct")
	assert.Contains(t, formattedCode, "`firestore:\"user_id\"`")
	assert.Contains(t, formattedCode, "`firestore:\"profile,omitempty\"`")
	assert.Regexp(t, `UserId\s+int64`, formattedCode)
	assert.Regexp(t, `Rating\s+float64`, formattedCode)
	assert.Regexp(t, `Joined\s+time\.Time`, formattedCode)
	assert.Regexp(t, `Tags\s+\[\]string`, formattedCode)
}
