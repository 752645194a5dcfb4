package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Load reads a models.yaml document from path and returns the registry it
// describes.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a Registry from a YAML schema document. The document is a
// mapping from model name to a mapping of property definitions:
//
//	user:
//	  id: {type: integer, index: true}
//	  handle: {type: string, unique: true, maxlength: 100}
//	  articles: {type: array, ref: article}
//
// Model and property declaration order is preserved.
func Parse(data []byte) (*Registry, error) {
	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	registry := NewRegistry()
	for _, modelItem := range doc {
		modelName, ok := modelItem.Key.(string)
		if !ok {
			return nil, fmt.Errorf("parse schema: model name %v is not a string", modelItem.Key)
		}

		props, ok := modelItem.Value.(yaml.MapSlice)
		if !ok && modelItem.Value != nil {
			return nil, fmt.Errorf("parse schema: model %q is not a mapping", modelName)
		}

		model := make(Model, 0, len(props))
		for _, propItem := range props {
			propName, ok := propItem.Key.(string)
			if !ok {
				return nil, fmt.Errorf("parse schema: model %q: property name %v is not a string", modelName, propItem.Key)
			}
			prop, err := parseProperty(modelName, propName, propItem.Value)
			if err != nil {
				return nil, err
			}
			model = append(model, prop)
		}
		registry.Register(modelName, model)
	}
	return registry, nil
}

func parseProperty(modelName, propName string, raw any) (Property, error) {
	prop := Property{Name: propName}

	fields, ok := raw.(yaml.MapSlice)
	if !ok && raw != nil {
		return prop, fmt.Errorf("parse schema: model %q, property %q: definition is not a mapping", modelName, propName)
	}

	for _, field := range fields {
		key, ok := field.Key.(string)
		if !ok {
			return prop, fmt.Errorf("parse schema: model %q, property %q: field name %v is not a string", modelName, propName, field.Key)
		}
		switch key {
		case "type":
			s, ok := asString(field.Value)
			if !ok {
				return prop, fmt.Errorf("parse schema: model %q, property %q: type must be a string", modelName, propName)
			}
			prop.Type = Type(s)
		case "default":
			prop.Default = normalizeScalar(field.Value)
		case "required":
			prop.Required, ok = asBool(field.Value)
		case "unique":
			prop.Unique, ok = asBool(field.Value)
		case "index":
			prop.Index, ok = asBool(field.Value)
		case "ref":
			prop.Ref, ok = asString(field.Value)
		case "maxlength":
			prop.MaxLength, ok = asInt(field.Value)
		default:
			return prop, fmt.Errorf("parse schema: model %q, property %q: unknown field %q", modelName, propName, key)
		}
		if !ok {
			return prop, fmt.Errorf("parse schema: model %q, property %q: invalid value for %q", modelName, propName, key)
		}
	}

	if prop.Type == "" {
		return prop, fmt.Errorf("parse schema: model %q, property %q: missing type", modelName, propName)
	}
	return prop, nil
}

// normalizeScalar collapses the integer widths the YAML decoder may produce
// into int64, so defaults compare predictably downstream.
func normalizeScalar(v any) any {
	if n, ok := asInt64(v); ok {
		return n
	}
	return v
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	n, ok := asInt64(v)
	return int(n), ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
