// Package store maps schema-defined object graphs onto a flat key-value
// store built from list, hash, and atomic-counter primitives.
//
// A Repository creates, saves, and loads dynamically shaped instances.
// Instances nest: a property may hold a single owned instance or an ordered
// list of scalars and instances, to any depth. On save the graph is
// flattened into the store; on load it is reconstructed symmetrically.
//
// # Key layout
//
// The persisted layout is fixed for compatibility with existing rstore
// databases:
//
//   - {modelName} - list of ids in insertion order, append-only
//   - {modelName}:{id} - hash of property name to encoded value
//   - {modelName}:{property} - index hash of value to id, last write wins
//   - {ownerId}:list:{property} - list backing a list-typed property
//   - auto_increment - hash of model name to last-assigned id
//
// Encoded values are bare scalars, "{modelName}:model:{id}" references, or
// "{ownerId}:list:{property}" list keys. Note the list key carries no model
// name: instances of different models sharing a numeric id and a property
// name collide on the same list. All-digit strings decode as integers, so a
// string property whose value is fully numeric comes back as an integer.
//
// # Consistency
//
// Save is a sequence of individually atomic store operations, not a
// transaction. A reader racing a writer can observe a partially written
// record, such as an id present in the insertion list before its hash
// fields exist. Id assignment through the store-resident counter is
// race-free. Callers needing stricter guarantees must serialize writes.
//
// Instance graphs must be acyclic. Save recurses depth-first through nested
// instances without cycle detection; a cyclic graph does not terminate.
package store
