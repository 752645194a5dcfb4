package store

import (
	"context"
	"strconv"

	"github.com/danielmunro/rstore/internal/keys"
)

// encodeScalar renders a scalar value as its stored string form. Nil and
// empty model holders encode as the empty string.
func encodeScalar(v Value) string {
	switch val := v.(type) {
	case *StringValue:
		if val != nil {
			return val.Value
		}
	case *IntValue:
		if val != nil {
			return strconv.FormatInt(val.Value, 10)
		}
	}
	return ""
}

// decodeScalar parses a stored string back into a typed value. Fully
// numeric strings become integers, everything else stays a string, so a
// string property holding an all-digit value comes back as an integer.
func decodeScalar(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &IntValue{Value: n}
	}
	return &StringValue{Value: s}
}

// decodeValue routes one stored hash-field value: nested reference, list
// key, or bare scalar. References and list elements are loaded recursively.
func (r *Repository) decodeValue(ctx context.Context, raw string) (Value, error) {
	switch {
	case keys.IsReference(raw):
		modelName, id, ok := keys.ParseReference(raw)
		if !ok {
			return nil, ErrInvalidIdentifier
		}
		nested, err := r.loadByIndexRaw(ctx, modelName, "id", id)
		if err != nil {
			return nil, err
		}
		return &ModelValue{Instance: nested}, nil

	case keys.IsList(raw):
		if _, _, ok := keys.ParseListKey(raw); !ok {
			return nil, ErrInvalidIdentifier
		}
		elements, err := r.conn.Range(ctx, raw, 0, -1)
		if err != nil {
			return nil, err
		}
		values := make([]Value, 0, len(elements))
		for _, element := range elements {
			if keys.IsReference(element) {
				modelName, id, ok := keys.ParseReference(element)
				if !ok {
					return nil, ErrInvalidIdentifier
				}
				nested, err := r.loadByIndexRaw(ctx, modelName, "id", id)
				if err != nil {
					return nil, err
				}
				values = append(values, &ModelValue{Instance: nested})
				continue
			}
			values = append(values, decodeScalar(element))
		}
		return &ListValue{Values: values}, nil
	}

	return decodeScalar(raw), nil
}

// decodeInstance reconstructs an instance from a hash snapshot. Reserved
// fields land on the Instance struct, everything else in the property bag.
// Schema properties missing from the snapshot are back-filled with their
// zero values.
func (r *Repository) decodeInstance(ctx context.Context, modelName string, fields map[string]string) (*Instance, error) {
	inst := &Instance{
		Name:       modelName,
		Properties: make(map[string]Value, len(fields)),
	}
	for field, raw := range fields {
		switch field {
		case "id":
			inst.ID, _ = strconv.ParseInt(raw, 10, 64)
		case "name":
			inst.Name = raw
		case "created_date":
			inst.CreatedDate, _ = strconv.ParseInt(raw, 10, 64)
		case "modified_date":
			inst.ModifiedDate, _ = strconv.ParseInt(raw, 10, 64)
		default:
			v, err := r.decodeValue(ctx, raw)
			if err != nil {
				return nil, err
			}
			inst.Properties[field] = v
		}
	}

	def, err := r.registry.Definition(inst.Name)
	if err != nil {
		return nil, err
	}
	fillProperties(inst, def)
	return inst, nil
}
