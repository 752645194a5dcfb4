package store

// Instance is a single record conforming to a model's schema, plus any
// ad-hoc properties attached by the caller. Instances are created by
// Repository.Create and reconstructed fresh on every load; there is no
// in-process cache or shared identity.
type Instance struct {
	// Name is the model name. Set at creation, immutable.
	Name string

	// ID is zero until the first save, then a positive integer unique
	// within this model name. Never reused.
	ID int64

	// CreatedDate is the unix timestamp of the first save. Zero before.
	CreatedDate int64

	// ModifiedDate is the unix timestamp of the most recent save.
	ModifiedDate int64

	// Properties maps property names to values, covering every
	// schema-declared property and any ad-hoc ones.
	Properties map[string]Value
}

// Reserved property names routed to Instance fields rather than the
// property bag.
func isReserved(name string) bool {
	switch name {
	case "id", "name", "created_date", "modified_date":
		return true
	}
	return false
}

// Get returns the named property value, or nil if absent.
func (i *Instance) Get(name string) Value {
	return i.Properties[name]
}

// Set assigns the named property.
func (i *Instance) Set(name string, v Value) {
	if i.Properties == nil {
		i.Properties = make(map[string]Value)
	}
	i.Properties[name] = v
}

// String returns the named property as a string, or "" when it is absent
// or not a string.
func (i *Instance) String(name string) string {
	if v, ok := i.Properties[name].(*StringValue); ok && v != nil {
		return v.Value
	}
	return ""
}

// Int returns the named property as an integer, or 0 when it is absent or
// not an integer.
func (i *Instance) Int(name string) int64 {
	if v, ok := i.Properties[name].(*IntValue); ok && v != nil {
		return v.Value
	}
	return 0
}

// Model returns the nested instance held by the named property, or nil.
func (i *Instance) Model(name string) *Instance {
	if v, ok := i.Properties[name].(*ModelValue); ok && v != nil {
		return v.Instance
	}
	return nil
}

// List returns the elements of the named list property, or nil.
func (i *Instance) List(name string) []Value {
	if v, ok := i.Properties[name].(*ListValue); ok && v != nil {
		return v.Values
	}
	return nil
}

// value resolves a property by name, including the reserved fields, so the
// validator and index writer see id and dates like any other property.
func (i *Instance) value(name string) Value {
	switch name {
	case "id":
		return &IntValue{Value: i.ID}
	case "name":
		return &StringValue{Value: i.Name}
	case "created_date":
		return &IntValue{Value: i.CreatedDate}
	case "modified_date":
		return &IntValue{Value: i.ModifiedDate}
	}
	return i.Properties[name]
}
