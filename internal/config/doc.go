// Package config provides the typed configuration lookup the planner and
// connection provider consume.
//
// # Overview
//
// Configuration flows through three stages:
//
//	YAML file ──> Map (Source) ──> WithEnv overrides ──> Resolve ──> Config
//
// Map is a flat key->value Source; every getter takes a default so callers
// never distinguish "absent" from "set to the default". Resolve collapses
// the Source into a validated Config struct with the planner's documented
// defaults applied (split key "_id", split size 64 MB).
//
// Environment overrides use the MONGOSPLIT_ prefix with the upper-cased
// key name, e.g. MONGOSPLIT_SPLITKEY overrides "splitKey".
package config
