// Package config loads, normalizes, and validates texgallery configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TEXGALLERY_MEDIA_ROOT
// environment fallback. The Config type centralizes every knob the CLI and the
// serve daemon need: where catalog lists and media live, how archives are laid
// out, which texture groups the mod builder offers, and how logs are written.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
