// Package transform converts untyped configuration values into typed Go
// values, guided by a table of type descriptors.
//
// The descriptor table is built once per Go type by reflection. Every type
// reachable from a resource schema gets an entry addressed by its TypeID, and
// references between entries are plain indices, so self-referential shapes
// (a task that embeds a for-each wrapper that embeds a task) are cycles in the
// table rather than names that need re-resolution on every call.
//
// Input values are cty values, as produced by the wire codec, or Go-native
// dynamic values (maps, slices, scalars). Strings that are exactly one
// `${...}` reference become deferred references when the target type allows
// it; see the Wrapper interface.
package transform
