// Package pipelines holds the typed schema of the Pipeline resource variant.
package pipelines
