// Package jobs holds the typed schema of the Job resource variant.
//
// The schema mirrors the job definition accepted by the orchestrator. Field
// names follow the configuration keys through `json` tags. Fields tagged
// `omitempty` are optional, and fields that may hold a `${...}` reference are
// wrapped in core.VariableOr.
package jobs
