// Package core holds the types shared by resource loaders, mutators and the
// driver that runs them.
//
// A Bundle is the read-only view of the deployment bundle a function runs
// against: its target and resolved variables, plus the resource state when
// mutators run. Diagnostics collect the errors and warnings a function
// reports, each with an optional path into the configuration and a Location.
//
// VariableOr wraps a field that holds either a concrete value or an unresolved
// `${...}` reference. Its zero value is unset, so an absent field and an
// explicit zero value stay distinct through a decode and encode round trip.
//
// Locations are cosmetic. They point diagnostics at the user's own code and
// show where a resource was declared, but nothing depends on them for
// correctness.
package core
