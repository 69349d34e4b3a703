package scriptbridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherRecord() ToolRecord {
	return ToolRecord{
		Kind:            "get_weather",
		ToolDescription: "Get the weather forecast",
		ExtraParameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city":  map[string]any{"type": "string", "description": "City name"},
				"days":  map[string]any{"type": "integer", "default": float64(3)},
				"units": map[string]any{"type": "string"},
			},
			"required": []any{"city"},
		},
	}
}

func TestSchemaFromRecord(t *testing.T) {
	schema, err := SchemaFromRecord(weatherRecord())
	require.NoError(t, err)
	assert.Equal(t, "get_weather", schema.Name)
	assert.Equal(t, "Get the weather forecast", schema.Description)
	require.Len(t, schema.Params, 3)

	// Required properties come first in required-array order, the rest sorted.
	assert.Equal(t, "city", schema.Params[0].Name)
	assert.True(t, schema.Params[0].Required)
	assert.Equal(t, TypeString, schema.Params[0].Type)
	assert.Equal(t, "City name", schema.Params[0].Description)
	assert.Equal(t, "days", schema.Params[1].Name)
	assert.False(t, schema.Params[1].Required)
	assert.Equal(t, TypeInteger, schema.Params[1].Type)
	assert.Equal(t, float64(3), schema.Params[1].Default)
	assert.Equal(t, "units", schema.Params[2].Name)
}

func TestSchemaFromRecord_FromJSON(t *testing.T) {
	raw := `{
		"kind": "send_mail",
		"tool_description": "Send an email",
		"extra_parameters": {
			"properties": {
				"to": {"type": "string"},
				"body": {"type": "string"}
			},
			"required": ["to", "body"]
		}
	}`
	var rec ToolRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	schema, err := SchemaFromRecord(rec)
	require.NoError(t, err)
	require.Len(t, schema.Params, 2)
	assert.Equal(t, "to", schema.Params[0].Name)
	assert.Equal(t, "body", schema.Params[1].Name)
}

func TestSchemaFromRecord_Errors(t *testing.T) {
	_, err := SchemaFromRecord(ToolRecord{})
	require.Error(t, err)

	bad := ToolRecord{
		Kind: "bad",
		ExtraParameters: map[string]any{
			"properties": map[string]any{
				"x": map[string]any{"type": "tuple"},
			},
		},
	}
	_, err = SchemaFromRecord(bad)
	require.Error(t, err)

	notObject := ToolRecord{
		Kind: "bad",
		ExtraParameters: map[string]any{
			"properties": map[string]any{"x": "string"},
		},
	}
	_, err = SchemaFromRecord(notObject)
	require.Error(t, err)
}

func TestSchemaFromRecord_NoParams(t *testing.T) {
	schema, err := SchemaFromRecord(ToolRecord{Kind: "ping", ToolDescription: "Ping"})
	require.NoError(t, err)
	assert.Empty(t, schema.Params)
}

func TestSchemasFromRecords_Bindings(t *testing.T) {
	records := []ToolRecord{
		{Kind: "records.v2.weather", ToolDescription: "Weather"},
		{Kind: "ping", ToolDescription: "Ping"},
	}
	bindings := []RecordBinding{{ScriptName: "get_weather", Kind: "records.v2.weather"}}
	schemas, err := SchemasFromRecords(records, bindings)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "get_weather", schemas[0].Name)
	assert.Equal(t, "ping", schemas[1].Name)

	_, err = SchemasFromRecords(records, []RecordBinding{{ScriptName: "x", Kind: "missing"}})
	require.Error(t, err)
}
