// Package settings loads the engine's inbound boundary documents: the
// template JSON and flattened settings files (JSON, YAML, Java
// properties, .env) with dotted-path keys for nested structure.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/solvfell/templar/internal/types"
)

/*
 * Settings file loading.
 *
 * Every supported format normalizes to the same shape: a flat map of
 * dotted field paths to values (e.g. "Hosting.HttpsPort" -> 8443).
 * Nested JSON/YAML documents are flattened; properties and .env files
 * are flat already and keep their keys verbatim.
 *
 * Format dispatch is by file extension. An unknown extension is a
 * structural error (ErrUnknownFormat), never a silent fallback: guessing
 * a parser would turn a typo in the filename into misleading validation
 * output.
 *
 * Value typing differs by format: JSON and YAML deliver typed scalars
 * (float64/int, bool), properties and .env deliver strings. The range
 * validator and predicate evaluation accept both.
 */

// Load reads a settings file and returns its flattened dotted-key view.
// Returns ErrUnknownFormat for extensions no loader handles.
func Load(path string) (map[string]any, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return loadJSON(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".properties":
		return loadProperties(path)
	case ".env":
		return loadEnv(path)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFormat, ext)
	}
}

func loadJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Flatten(doc), nil
}

func loadYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Flatten(doc), nil
}

func loadProperties(path string) (map[string]any, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]any, p.Len())
	for key, value := range p.Map() {
		values[key] = value
	}
	return values, nil
}

func loadEnv(path string) (map[string]any, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]any, len(env))
	for key, value := range env {
		values[key] = value
	}
	return values, nil
}

// LoadTemplate reads a template document from a JSON file.
func LoadTemplate(path string) (*types.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t types.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return &t, nil
}

// Flatten converts a nested document into the flat dotted-key view.
// Arrays stay intact as values; only nested objects contribute path
// segments.
func Flatten(doc map[string]any) map[string]any {
	flat := map[string]any{}
	flattenInto(flat, "", doc)
	return flat
}

// flattenInto recursively descends nested maps, accumulating the dotted
// path prefix. YAML may deliver map[any]any for unusual keys; those are
// normalized through their string form.
func flattenInto(flat map[string]any, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			flattenInto(flat, joinPath(prefix, key), child)
		}
	case map[any]any:
		for key, child := range v {
			flattenInto(flat, joinPath(prefix, fmt.Sprintf("%v", key)), child)
		}
	default:
		if prefix != "" {
			flat[prefix] = value
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
