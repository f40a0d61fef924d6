// Package app wires one runtime invocation together: it loads the settings,
// builds the logger and the registry of user functions, runs the driver and
// reports the outcome on stderr and in the metrics file. It is decoupled from
// the command line, which lives in the cli package.
package app
