/*
Package config reads loosely typed maps decoded from YAML or JSON.

# Overview

Node configs in graph documents and the CLI settings file arrive as
map[string]any. Config wraps such a map with accessors that fall back to a
default when a key is missing or has the wrong type, so callers can fill a
typed struct from catalogue defaults without nil checks.

# Basic Usage

	cfg := config.New(map[string]any{
	    "symbol":   "RELIANCE",
	    "interval": "5minute",
	    "stopLossPercent": 1.5,
	})

	symbol := cfg.String("symbol", "")         // "RELIANCE"
	sl := cfg.Float("stopLossPercent", 2)      // 1.5
	useNow := cfg.Bool("useCurrentTimestamp", true) // true

Enum fields are checked against their allowed values:

	interval, err := cfg.Enum("interval", "1minute", "1minute", "5minute", "1day")
	// err is a *ValueError for anything else

# Numbers

JSON decodes every number to float64 and YAML decodes whole numbers to int.
Int accepts a float64 only when it has no fractional part; Float accepts
both.

# File Loading

	cfg, err := config.FromFile("settings.yaml") // .yaml, .yml or .json
*/
package config
