package models

// JSONValue is a generic type to represent any native value.
// This can be a string, number, boolean, nil, time, object, array, or one of the handle types below.
type JSONValue = interface{}

// Object represents a native key/value mapping.
type Object map[string]JSONValue

// Array represents an ordered sequence of native values.
type Array []JSONValue

// Reference is a first-class reference handle holding a fully-qualified document resource name.
type Reference struct {
	Name string `json:"name"`
}

// GeoPoint is a first-class latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Resolver turns a document path into a fully-qualified resource name.
type Resolver interface {
	ResourceName(path string) (string, error)
}

// DocumentRef is a live reference bound to the client that can resolve its path.
type DocumentRef struct {
	Path     string
	Resolver Resolver
}

// Literal shapes recognised on native objects. They mirror the wire discriminators
// so that decoded references and geo-points survive a round trip unchanged.
const (
	ReferenceKey = "referenceValue"
	GeoPointKey  = "geoPointValue"
	LatitudeKey  = "latitude"
	LongitudeKey = "longitude"
)

// ReferenceLiteral builds the plain-object form of a reference.
func ReferenceLiteral(name string) Object {
	return Object{ReferenceKey: name}
}

// GeoPointLiteral builds the plain-object form of a geo-point.
func GeoPointLiteral(lat, lng float64) Object {
	return Object{GeoPointKey: Object{LatitudeKey: lat, LongitudeKey: lng}}
}

// IntermediateRepresentation holds parsed native input.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the input is an array vs an object
}

// Kind classifies the Go type inferred for a document field.
type Kind int

const (
	Interface Kind = iota
	String
	Int
	Float
	Bool
	Time
	Struct
	Slice
)

// TypeInfo describes an inferred Go type.
type TypeInfo struct {
	Kind             Kind
	Name             string
	StructName       string
	IsPointer        bool
	SliceElementType *TypeInfo
}

// FieldInfo describes one field of a generated struct.
type FieldInfo struct {
	Key    string // document field key
	GoName string
	GoType TypeInfo
	Tag    string
}

// StructDef is a generated struct declaration.
type StructDef struct {
	Name   string
	Fields []FieldInfo
	IsRoot bool
}

// AnalysisResult is the output of shape analysis: struct declarations and the imports they need.
type AnalysisResult struct {
	Structs []StructDef
	Imports map[string]struct{}
}
