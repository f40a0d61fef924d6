// Package driver runs one phase of the extension runtime.
//
// The orchestrator starts the runtime once per phase. The driver reads the
// configuration it was given, resolves the configured function references
// through the registry, runs the phase and writes the output, diagnostics and
// locations files. Only argument errors, which happen before the driver
// starts, are fatal. Every later failure becomes an error diagnostic, the
// input is written back unchanged, and the run ends with exit code 1.
package driver
