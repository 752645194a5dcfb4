// Package schema defines model schemas and the registry that holds them.
//
// A schema describes the shape of a model: its property names, their types,
// defaults, and index/uniqueness flags. Schemas are registered once at
// construction time and are read-only afterward. The repository consults the
// registry on every create, save, and load.
package schema

import (
	"errors"
	"fmt"
)

// ErrModelNotFound is returned when a model name is not registered.
var ErrModelNotFound = errors.New("rstore: model not found")

// Type is the declared type of a model property.
type Type string

const (
	// TypeString is a text property, optionally bounded by MaxLength.
	TypeString Type = "string"

	// TypeInteger is a numeric property.
	TypeInteger Type = "integer"

	// TypeModel is a single nested instance of the model named by Ref.
	TypeModel Type = "model"

	// TypeArray is an ordered list. With Ref set, every element must be an
	// instance of that model; without Ref, elements are scalars.
	TypeArray Type = "array"
)

// Property describes one declared property of a model.
type Property struct {
	// Name is the property name as it appears in the stored hash.
	Name string

	// Type is one of the declared Type constants. Anything else fails
	// validation with "is an invalid type".
	Type Type

	// Default is the value applied by Create when the caller supplies none.
	// A string or integer, per Type.
	Default any

	// Required marks the property as mandatory on save.
	Required bool

	// Unique marks the property as index-backed and enforced unique.
	Unique bool

	// Index marks the property as index-backed (value -> id lookup).
	Index bool

	// Ref names the target model for TypeModel and TypeArray properties.
	Ref string

	// MaxLength bounds TypeString values. Zero means unbounded.
	MaxLength int
}

// Indexed reports whether the property is backed by a secondary index.
// Unique properties are always indexed.
func (p Property) Indexed() bool {
	return p.Index || p.Unique
}

// Model is an ordered set of property definitions. Order follows the
// declaration order in the schema document.
type Model []Property

// Property returns the definition for name.
func (m Model) Property(name string) (Property, bool) {
	for _, p := range m {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Registry maps model names to their definitions. It is safe for concurrent
// readers once construction is complete.
type Registry struct {
	names  []string
	models map[string]Model
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]Model),
	}
}

// Register adds a model definition under name, replacing any previous
// definition with the same name.
func (r *Registry) Register(name string, m Model) {
	if _, exists := r.models[name]; !exists {
		r.names = append(r.names, name)
	}
	r.models[name] = m
}

// Definition returns the model definition for name, or ErrModelNotFound.
func (r *Registry) Definition(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return m, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.models[name]
	return ok
}

// Models returns all registered model names in registration order.
func (r *Registry) Models() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
