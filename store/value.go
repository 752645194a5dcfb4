package store

// Value is a property value: a scalar, a single owned nested instance, or
// an ordered list of scalars and instances. A nil Value is the empty value
// for model-typed properties.
type Value interface {
	isValue()
}

// StringValue holds a text scalar.
type StringValue struct {
	Value string
}

// IntValue holds an integer scalar.
type IntValue struct {
	Value int64
}

// ModelValue holds a single owned nested instance.
type ModelValue struct {
	Instance *Instance
}

// ListValue holds an ordered sequence of scalars and instances.
type ListValue struct {
	Values []Value
}

func (*StringValue) isValue() {}
func (*IntValue) isValue()    {}
func (*ModelValue) isValue()  {}
func (*ListValue) isValue()   {}

// isZero reports whether v is the empty value for its kind: nil, zero,
// empty string, empty list, or a model holder without an instance.
func isZero(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case *StringValue:
		return val == nil || val.Value == ""
	case *IntValue:
		return val == nil || val.Value == 0
	case *ModelValue:
		return val == nil || val.Instance == nil
	case *ListValue:
		return val == nil || len(val.Values) == 0
	}
	return false
}
