package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/danielmunro/rstore/conn"
	"github.com/danielmunro/rstore/internal/keys"
	"github.com/danielmunro/rstore/schema"
)

// Repository stores and retrieves model instances through a store
// connection. It holds no state beyond the connection and the schema
// registry and is safe for concurrent use to the extent the store's
// primitives are individually atomic.
type Repository struct {
	conn     conn.Conn
	registry *schema.Registry
}

// New creates a Repository over a store connection and a schema registry.
func New(c conn.Conn, registry *schema.Registry) *Repository {
	return &Repository{
		conn:     c,
		registry: registry,
	}
}

// Create builds a new ephemeral instance of the named model: schema
// defaults applied first, caller-supplied properties overlaid, and every
// still-missing schema property back-filled with its type's zero value.
// The instance has id 0 and unset dates until the first save.
//
// Reserved names in properties are routed to the instance fields; "name"
// is ignored, since the model name is fixed at creation.
func (r *Repository) Create(modelName string, properties map[string]Value) (*Instance, error) {
	def, err := r.registry.Definition(modelName)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		Name:       modelName,
		Properties: make(map[string]Value, len(def)),
	}
	for _, prop := range def {
		if prop.Default == nil || isReserved(prop.Name) {
			continue
		}
		inst.Properties[prop.Name] = defaultValue(prop.Default)
	}
	for name, v := range properties {
		switch name {
		case "id":
			if iv, ok := v.(*IntValue); ok && iv != nil {
				inst.ID = iv.Value
			}
		case "created_date":
			if iv, ok := v.(*IntValue); ok && iv != nil {
				inst.CreatedDate = iv.Value
			}
		case "modified_date":
			if iv, ok := v.(*IntValue); ok && iv != nil {
				inst.ModifiedDate = iv.Value
			}
		case "name":
		default:
			inst.Properties[name] = v
		}
	}
	fillProperties(inst, def)
	return inst, nil
}

// Save validates the instance and persists it. A new instance is assigned
// the next id from the model's store-resident counter; ids start at 1 and
// are never reused. The first save sets created_date; every save updates
// modified_date and appends the id to the model's insertion-order list, so
// re-saving an existing instance leaves a duplicate entry there that ranged
// loads surface.
//
// Nested instances reachable through model and list properties are saved
// first, depth-first, so their ids exist before the parent's references are
// encoded. A validation failure aborts before any writes for the failing
// instance, but nested instances saved earlier in the traversal stay
// persisted.
func (r *Repository) Save(ctx context.Context, inst *Instance) error {
	if err := r.validate(ctx, inst); err != nil {
		return err
	}
	def, err := r.registry.Definition(inst.Name)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	if inst.CreatedDate == 0 {
		inst.CreatedDate = now
	}
	inst.ModifiedDate = now
	if inst.ID == 0 {
		id, err := r.conn.IncrBy(ctx, keys.AutoIncrement, inst.Name, 1)
		if err != nil {
			return err
		}
		inst.ID = id
	}
	id := strconv.FormatInt(inst.ID, 10)

	if err := r.conn.Append(ctx, inst.Name, id); err != nil {
		return err
	}

	hashKey := keys.Model(inst.Name, id)
	reserved := [][2]string{
		{"id", id},
		{"name", inst.Name},
		{"created_date", strconv.FormatInt(inst.CreatedDate, 10)},
		{"modified_date", strconv.FormatInt(inst.ModifiedDate, 10)},
	}
	for _, field := range reserved {
		if err := r.conn.SetField(ctx, hashKey, field[0], field[1]); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(inst.Properties) {
		if isReserved(name) {
			continue
		}
		if err := r.writeProperty(ctx, hashKey, id, name, inst.Properties[name]); err != nil {
			return err
		}
	}

	for _, prop := range def {
		if !prop.Indexed() {
			continue
		}
		indexKey := keys.Index(inst.Name, prop.Name)
		if err := r.conn.SetField(ctx, indexKey, encodeScalar(inst.value(prop.Name)), id); err != nil {
			return err
		}
	}
	return nil
}

// writeProperty encodes one property into the store: nested instances are
// saved recursively and referenced by token, lists are appended element by
// element to their list key, scalars are written verbatim.
func (r *Repository) writeProperty(ctx context.Context, hashKey, ownerID, name string, v Value) error {
	switch val := v.(type) {
	case *ModelValue:
		if val == nil || val.Instance == nil {
			return r.conn.SetField(ctx, hashKey, name, "")
		}
		if err := r.Save(ctx, val.Instance); err != nil {
			return err
		}
		ref := keys.Reference(val.Instance.Name, strconv.FormatInt(val.Instance.ID, 10))
		return r.conn.SetField(ctx, hashKey, name, ref)

	case *ListValue:
		if val == nil || len(val.Values) == 0 {
			// An empty list writes nothing; the property is back-filled
			// on load.
			return nil
		}
		listKey := keys.List(ownerID, name)
		for _, element := range val.Values {
			if mv, ok := element.(*ModelValue); ok && mv != nil && mv.Instance != nil {
				if err := r.Save(ctx, mv.Instance); err != nil {
					return err
				}
				ref := keys.Reference(mv.Instance.Name, strconv.FormatInt(mv.Instance.ID, 10))
				if err := r.conn.Append(ctx, listKey, ref); err != nil {
					return err
				}
				continue
			}
			if err := r.conn.Append(ctx, listKey, encodeScalar(element)); err != nil {
				return err
			}
		}
		return r.conn.SetField(ctx, hashKey, name, listKey)
	}

	return r.conn.SetField(ctx, hashKey, name, encodeScalar(v))
}

// LoadByIndex looks up one instance through an index-backed property. It
// returns nil without error when no index entry exists for value.
func (r *Repository) LoadByIndex(ctx context.Context, modelName, index string, value Value) (*Instance, error) {
	return r.loadByIndexRaw(ctx, modelName, index, encodeScalar(value))
}

func (r *Repository) loadByIndexRaw(ctx context.Context, modelName, index, value string) (*Instance, error) {
	id, ok, err := r.conn.GetField(ctx, keys.Index(modelName, index), value)
	if err != nil {
		return nil, err
	}
	if !ok || id == "" {
		return nil, nil
	}
	return r.loadModel(ctx, modelName, id)
}

// Load returns instances of the named model in insertion order, bounded by
// the store's inclusive range semantics: 0-based, negative indices counting
// from the end, -1 being the last element.
func (r *Repository) Load(ctx context.Context, modelName string, start, stop int64) ([]*Instance, error) {
	ids, err := r.conn.Range(ctx, modelName, start, stop)
	if err != nil {
		return nil, err
	}
	results := make([]*Instance, 0, len(ids))
	for _, id := range ids {
		inst, err := r.loadModel(ctx, modelName, id)
		if err != nil {
			return nil, err
		}
		results = append(results, inst)
	}
	return results, nil
}

// LoadReverse returns instances in reverse insertion order. The window is
// computed by reflecting start and stop against the current list length and
// reversing the result; no separate reverse structure is maintained. A
// concurrent writer can shift the window by a few elements between the
// length read and the range read, which is accepted.
func (r *Repository) LoadReverse(ctx context.Context, modelName string, start, stop int64) ([]*Instance, error) {
	length, err := r.conn.Len(ctx, modelName)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	results, err := r.Load(ctx, modelName, length-1-stop, length-1-start)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// Clear wipes the entire store. Administrative and test use only.
func (r *Repository) Clear(ctx context.Context) error {
	return r.conn.Clear(ctx)
}

func (r *Repository) loadModel(ctx context.Context, modelName, id string) (*Instance, error) {
	fields, err := r.conn.GetAllFields(ctx, keys.Model(modelName, id))
	if err != nil {
		return nil, err
	}
	return r.decodeInstance(ctx, modelName, fields)
}

// fillProperties back-fills schema-declared properties missing from the
// instance with the zero value for their type, so declared properties are
// never absent after create or load.
func fillProperties(inst *Instance, def schema.Model) {
	for _, prop := range def {
		if isReserved(prop.Name) {
			continue
		}
		if _, ok := inst.Properties[prop.Name]; ok {
			continue
		}
		inst.Properties[prop.Name] = zeroValue(prop.Type)
	}
}

func zeroValue(t schema.Type) Value {
	switch t {
	case schema.TypeInteger:
		return &IntValue{}
	case schema.TypeString:
		return &StringValue{}
	case schema.TypeArray:
		return &ListValue{}
	}
	return nil
}

func defaultValue(d any) Value {
	switch v := d.(type) {
	case string:
		return &StringValue{Value: v}
	case int64:
		return &IntValue{Value: v}
	case int:
		return &IntValue{Value: int64(v)}
	}
	return &StringValue{Value: fmt.Sprint(d)}
}

func sortedNames(properties map[string]Value) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
