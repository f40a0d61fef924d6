// Package resources holds the collection of typed resources produced or
// mutated during one phase, together with the source locations and
// diagnostics gathered while building it.
//
// Resources are grouped by Kind, one typed sub-collection per variant. Within
// a Kind names are unique: the first registration wins and every later one is
// rejected with an error diagnostic. A Resources value is only changed through
// its methods, so these rules cannot be bypassed.
//
// The package also implements the mutator pipeline (see ApplyMutators) and a
// YAML loader for resource definitions kept in files (see LoadYAML).
package resources
