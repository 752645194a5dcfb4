package store

import (
	"context"

	"github.com/danielmunro/rstore/schema"
)

// validate checks an instance against its schema. It performs index reads
// for uniqueness enforcement but never writes.
func (r *Repository) validate(ctx context.Context, inst *Instance) error {
	def, err := r.registry.Definition(inst.Name)
	if err != nil {
		return err
	}
	for _, prop := range def {
		if err := r.validateProperty(ctx, inst, prop); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) validateProperty(ctx context.Context, inst *Instance, prop schema.Property) error {
	value := inst.value(prop.Name)

	// Required and index-backed properties must be present. The id is
	// exempt: it is zero until the first save assigns it.
	if prop.Name != "id" && isZero(value) {
		if prop.Required || prop.Indexed() {
			return &ValidationError{Property: prop.Name, Reason: "is required"}
		}
	}

	// Index-backed values must not already map to a different id.
	if !isZero(value) && prop.Indexed() {
		existing, err := r.loadByIndexRaw(ctx, inst.Name, prop.Name, encodeScalar(value))
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != inst.ID {
			return &ValidationError{Property: prop.Name, Reason: "must be unique."}
		}
	}

	switch prop.Type {
	case schema.TypeString:
		sv, ok := value.(*StringValue)
		if !ok || sv == nil {
			return &ValidationError{Property: prop.Name, Reason: "should be string, is not"}
		}
		if prop.MaxLength > 0 && len(sv.Value) > prop.MaxLength {
			return &ValidationError{Property: prop.Name, Reason: "exceeds max length"}
		}
		return nil

	case schema.TypeInteger:
		if !isNumeric(value) {
			return &ValidationError{Property: prop.Name, Reason: "should be integer, is not"}
		}
		return nil

	case schema.TypeModel:
		if isZero(value) {
			return nil
		}
		mv, ok := value.(*ModelValue)
		if !ok || mv.Instance == nil || mv.Instance.Name != prop.Ref {
			return &ValidationError{Property: prop.Name, Reason: "should be model, is not"}
		}
		return nil

	case schema.TypeArray:
		if prop.Ref == "" {
			// Untyped arrays accept anything, matching the reference
			// implementation.
			return nil
		}
		lv, ok := value.(*ListValue)
		if !ok || lv == nil {
			return &ValidationError{Property: prop.Name, Reason: "should be an array, is not"}
		}
		for _, element := range lv.Values {
			mv, ok := element.(*ModelValue)
			if !ok || mv.Instance == nil || mv.Instance.Name != prop.Ref {
				return &ValidationError{Property: prop.Name, Reason: "should contain only models, does not"}
			}
		}
		return nil
	}

	return &ValidationError{Property: prop.Name, Reason: "is an invalid type"}
}

// isNumeric reports whether a value satisfies an integer-typed property.
// String digits count, mirroring the stored form.
func isNumeric(v Value) bool {
	switch val := v.(type) {
	case *IntValue:
		return val != nil
	case *StringValue:
		if val == nil || val.Value == "" {
			return false
		}
		for i, c := range val.Value {
			if c == '-' && i == 0 && len(val.Value) > 1 {
				continue
			}
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	}
	return false
}
