// Package wire reads and writes the files exchanged with the orchestrator:
// the configuration document (JSON, in and out), the diagnostics file and the
// optional locations file (both newline-delimited JSON).
//
// The configuration is kept as a cty.Value so that sections this runtime does
// not understand pass through untouched, numbers keep their precision, and
// resource values can go straight into the transform engine.
package wire
