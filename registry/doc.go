// Package registry maps the `module:name` references found in configuration
// to compiled Go values.
//
// User programs cannot be imported at run time, so every resource loader and
// every mutator a project wants to expose is registered here under a fully
// qualified reference before the runtime starts. Resolving a configured
// reference is then a lookup with the same failure modes as an import: the
// module is missing, the attribute is missing, or the attribute has the wrong
// type (checked by the caller).
package registry
