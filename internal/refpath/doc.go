/*
Package refpath provides a structured representation of the paths used by
deferred references, written in configuration values as `${a.b[0].c}`.

The path format is an identifier followed by any sequence of `.identifier`
attribute steps and `[n]` index steps. Identifiers start with a letter or an
underscore and may contain letters, digits, underscores and hyphens.

A string is a reference only when it consists of exactly one `${...}` wrapper
around a valid path. Text before or after the wrapper makes it a plain string.
*/
package refpath
