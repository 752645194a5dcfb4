// Package keys derives the store key layout shared by the codec and the
// repository. The layout is fixed for compatibility with existing rstore
// databases and must not change shape.
package keys

import "strings"

// AutoIncrement is the hash holding the last-assigned id per model name.
const AutoIncrement = "auto_increment"

// Model returns the hash key holding an instance's encoded properties,
// "{modelName}:{id}".
func Model(modelName, id string) string {
	return modelName + ":" + id
}

// Index returns the hash key of a secondary index, "{modelName}:{property}".
// Fields of this hash map property values to instance ids, last write wins.
func Index(modelName, property string) string {
	return modelName + ":" + property
}

// List returns the list key backing a list-typed property,
// "{ownerId}:list:{property}".
//
// The owner model name is deliberately absent: ids are unique per model
// only, so instances of two models sharing an id and a property name collide
// on the same list key. Legacy layout, kept for compatibility.
func List(ownerID, property string) string {
	return ownerID + ":list:" + property
}

// Reference encodes a nested instance reference, "{modelName}:model:{id}".
func Reference(modelName, id string) string {
	return modelName + ":model:" + id
}

// ParseReference splits an encoded reference into its model name and id.
// It reports false unless the string has exactly three ":"-delimited parts
// with the literal token "model" in the middle.
func ParseReference(s string) (modelName, id string, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[1] != "model" {
		return "", "", false
	}
	return parts[0], parts[2], true
}

// ParseListKey splits an encoded list key into its owner id and property
// name, reporting false unless the string has the three-part list form.
func ParseListKey(s string) (ownerID, property string, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[1] != "list" {
		return "", "", false
	}
	return parts[0], parts[2], true
}

// IsReference reports whether an encoded value carries the nested-reference
// token anywhere in it.
func IsReference(s string) bool {
	return strings.Contains(s, ":model:")
}

// IsList reports whether an encoded value carries the list-key token
// anywhere in it.
func IsList(s string) bool {
	return strings.Contains(s, ":list:")
}
