// Package openapi renders the adapter's interface description from the same
// route declarations the HTTP server is built from.
package openapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is pinned for compatibility with the Tyk gateway importer.
const Version = "3.0.3"

const errorSchemaRef = "#/components/schemas/HTTPError"

// Route declares one HTTP operation.
type Route struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Params      []Param
	// Hidden routes are served but left out of the document.
	Hidden bool
	// Upstream marks routes that proxy to SentraIP and can fail with its errors.
	Upstream bool
}

// Param declares a request parameter.
type Param struct {
	Name        string
	In          string
	Description string
	Required    bool
}

// RequiredQuery returns the names of required query parameters.
func (r Route) RequiredQuery() []string {
	var names []string
	for _, p := range r.Params {
		if p.Required && p.In == "query" {
			names = append(names, p.Name)
		}
	}
	return names
}

type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       Info                `json:"info" yaml:"info"`
	Servers    []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components Components          `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type PathItem map[string]*Operation

type Operation struct {
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string              `json:"operationId" yaml:"operationId"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required" yaml:"required"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Ref        string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type       string             `json:"type,omitempty" yaml:"type,omitempty"`
	Title      string             `json:"title,omitempty" yaml:"title,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
}

type Components struct {
	Schemas map[string]*Schema `json:"schemas" yaml:"schemas"`
}

// Build assembles the document for the visible routes.
func Build(info Info, servers []Server, routes []Route) *Document {
	doc := &Document{
		OpenAPI: Version,
		Info:    info,
		Servers: servers,
		Paths:   make(map[string]PathItem),
		Components: Components{Schemas: map[string]*Schema{
			"HTTPError": {
				Type:       "object",
				Title:      "HTTPError",
				Properties: map[string]*Schema{"detail": {Type: "string"}},
				Required:   []string{"detail"},
			},
		}},
	}

	for _, r := range routes {
		if r.Hidden {
			continue
		}
		item, ok := doc.Paths[r.Path]
		if !ok {
			item = make(PathItem)
			doc.Paths[r.Path] = item
		}
		item[strings.ToLower(r.Method)] = buildOperation(r)
	}
	return doc
}

func buildOperation(r Route) *Operation {
	op := &Operation{
		Tags:        r.Tags,
		Summary:     r.Summary,
		Description: r.Description,
		OperationID: r.OperationID,
		Responses: map[string]Response{
			"200": {
				Description: "Successful Response",
				Content:     map[string]MediaType{"application/json": {Schema: &Schema{Type: "object"}}},
			},
		},
	}
	for _, p := range r.Params {
		op.Parameters = append(op.Parameters, Parameter{
			Name:        p.Name,
			In:          p.In,
			Description: p.Description,
			Required:    p.Required,
			Schema:      &Schema{Type: "string", Title: p.Name},
		})
	}

	var codes []int
	if len(r.RequiredQuery()) > 0 {
		codes = append(codes, http.StatusUnprocessableEntity)
	}
	if r.Upstream {
		codes = append(codes,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		)
	}
	for _, code := range codes {
		op.Responses[strconv.Itoa(code)] = Response{
			Description: http.StatusText(code),
			Content:     map[string]MediaType{"application/json": {Schema: &Schema{Ref: errorSchemaRef}}},
		}
	}
	return op
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML renders the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}
