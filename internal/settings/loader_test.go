package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvfell/templar/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "settings.json", `{
		"Repository": "MongoDb",
		"Hosting": {"HttpsPort": 8443, "Tls": true}
	}`)

	values, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "MongoDb", values["Repository"])
	assert.Equal(t, float64(8443), values["Hosting.HttpsPort"])
	assert.Equal(t, true, values["Hosting.Tls"])
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "settings.yaml", `
Repository: MongoDb
Hosting:
  HttpsPort: 8443
  Tls: true
Plugins:
  - core
  - auth
`)

	values, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "MongoDb", values["Repository"])
	assert.Equal(t, 8443, values["Hosting.HttpsPort"])
	assert.Equal(t, true, values["Hosting.Tls"])
	// Arrays are values, not path segments.
	assert.Equal(t, []any{"core", "auth"}, values["Plugins"])
}

func TestLoad_Properties(t *testing.T) {
	path := writeFile(t, "settings.properties", `
Repository=MongoDb
Hosting.HttpsPort=8443
`)

	values, err := Load(path)
	require.NoError(t, err)

	// Properties keep keys verbatim and deliver string values.
	assert.Equal(t, "MongoDb", values["Repository"])
	assert.Equal(t, "8443", values["Hosting.HttpsPort"])
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, "settings.env", `
Repository=MongoDb
ConnectionString="mongodb://localhost:27017"
`)

	values, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "MongoDb", values["Repository"])
	assert.Equal(t, "mongodb://localhost:27017", values["ConnectionString"])
}

func TestLoad_CaseSensitiveKeys(t *testing.T) {
	path := writeFile(t, "settings.json", `{"Hosting": {"HttpsPort": 443}}`)

	values, err := Load(path)
	require.NoError(t, err)

	_, ok := values["Hosting.HttpsPort"]
	assert.True(t, ok, "dotted keys must preserve case")
	_, lowered := values["hosting.httpsport"]
	assert.False(t, lowered)
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := writeFile(t, "settings.toml", `Repository = "MongoDb"`)

	_, err := Load(path)
	assert.True(t, errors.Is(err, types.ErrUnknownFormat), "error = %v", err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeFile(t, "settings.json", `{"Repository": `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestFlatten_Nested(t *testing.T) {
	flat := Flatten(map[string]any{
		"A": map[string]any{
			"B": map[string]any{"C": 1},
			"D": "x",
		},
		"E": []any{"kept", "whole"},
	})

	assert.Equal(t, map[string]any{
		"A.B.C": 1,
		"A.D":   "x",
		"E":     []any{"kept", "whole"},
	}, flat)
}

func TestFlatten_AnyKeyedMaps(t *testing.T) {
	flat := Flatten(map[string]any{
		"A": map[any]any{"B": "x", 1: "y"},
	})

	assert.Equal(t, "x", flat["A.B"])
	assert.Equal(t, "y", flat["A.1"])
}

func TestLoadTemplate(t *testing.T) {
	path := writeFile(t, "template.json", `{
		"name": "shop",
		"fields": [
			{"name": "Repository", "range": "SQLite||MongoDb"},
			{"name": "ConnectionString"}
		],
		"ruleSets": [
			{
				"name": "Default",
				"rules": [
					{
						"description": "mongo needs a connection string",
						"conditions": [{"name": "Repository", "state": "SetToValue", "value": "MongoDb"}],
						"targets": [{"name": "ConnectionString", "state": "Set"}]
					}
				]
			}
		]
	}`)

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", tmpl.Name)
	require.Len(t, tmpl.Fields, 2)
	assert.Equal(t, "SQLite||MongoDb", tmpl.Fields[0].Range)
	require.Len(t, tmpl.RuleSets, 1)
	rule := tmpl.RuleSets[0].Rules[0]
	assert.Equal(t, types.StateSetToValue, rule.Conditions[0].State)
	assert.Equal(t, types.StateSet, rule.Targets[0].State)
}

func TestLoadTemplate_Malformed(t *testing.T) {
	path := writeFile(t, "template.json", `[1, 2]`)

	_, err := LoadTemplate(path)
	assert.Error(t, err)
}
