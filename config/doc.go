// Package config supplies the validated configuration object consumed by
// the tool surface: API credentials, polling bounds, per-field generation
// defaults, and an optional storage destination.
//
// Resolution precedence is default < YAML file < environment, mirroring
// the usual layering: a value set in the environment always wins.
package config
