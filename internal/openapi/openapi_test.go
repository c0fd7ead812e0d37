package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sentraip-mcp/internal/openapi"
)

var testRoutes = []openapi.Route{
	{
		Method:      "GET",
		Path:        "/mcp/check_ip",
		OperationID: "check_ip",
		Tags:        []string{"SentraIP"},
		Params:      []openapi.Param{{Name: "ip", In: "query", Required: true}},
		Upstream:    true,
	},
	{Method: "GET", Path: "/mcp/stats", OperationID: "get_stats", Upstream: true},
	{Method: "GET", Path: "/", OperationID: "root", Hidden: true},
}

func TestBuildSkipsHiddenRoutes(t *testing.T) {
	doc := openapi.Build(openapi.Info{Title: "t", Version: "1"}, nil, testRoutes)

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Len(t, doc.Paths, 2)
	assert.NotContains(t, doc.Paths, "/")
	require.Contains(t, doc.Paths, "/mcp/check_ip")
	assert.Equal(t, "check_ip", doc.Paths["/mcp/check_ip"]["get"].OperationID)
}

func TestBuildResponsesFollowRouteShape(t *testing.T) {
	doc := openapi.Build(openapi.Info{Title: "t", Version: "1"}, nil, testRoutes)

	checkIP := doc.Paths["/mcp/check_ip"]["get"]
	require.Len(t, checkIP.Parameters, 1)
	assert.True(t, checkIP.Parameters[0].Required)
	assert.Equal(t, "query", checkIP.Parameters[0].In)
	for _, code := range []string{"200", "401", "404", "422", "502", "503"} {
		assert.Contains(t, checkIP.Responses, code)
	}

	stats := doc.Paths["/mcp/stats"]["get"]
	assert.Empty(t, stats.Parameters)
	assert.NotContains(t, stats.Responses, "422")
	assert.Equal(t, "#/components/schemas/HTTPError", stats.Responses["502"].Content["application/json"].Schema.Ref)
}

func TestRenderJSONAndYAML(t *testing.T) {
	servers := []openapi.Server{{URL: "http://10.10.0.3:8081", Description: "Internal MCP server"}}
	doc := openapi.Build(openapi.Info{Title: "SentraIP MCP Adapter", Version: "1.0.0"}, servers, testRoutes)

	raw, err := doc.JSON()
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.Equal(t, "3.0.3", fromJSON["openapi"])

	raw, err = doc.YAML()
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &fromYAML))
	assert.Equal(t, "3.0.3", fromYAML["openapi"])
	srv := fromYAML["servers"].([]any)[0].(map[string]any)
	assert.Equal(t, "http://10.10.0.3:8081", srv["url"])
}

func TestRequiredQuery(t *testing.T) {
	assert.Equal(t, []string{"ip"}, testRoutes[0].RequiredQuery())
	assert.Nil(t, testRoutes[1].RequiredQuery())
}
