// Package config loads the runtime settings of the extension runtime: how it
// logs, where it exports metrics and which directory source locations are
// reported relative to.
//
// Settings come from an optional `bundlefn.yml` file, overlaid by environment
// variables with the `BUNDLEFN_` prefix and `__` as the nesting delimiter, e.g.
// `BUNDLEFN_LOG__LEVEL=debug`. Command-line flags override both; that part
// lives in the cli package.
package config
