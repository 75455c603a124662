// Package config defines the autoclicker daemon settings and provides
// helpers to load, validate and save them in YAML format.
//
// Validate fills in defaults for every omitted field, so an empty file
// describes a usable three-slot daemon listening on localhost.
package config
