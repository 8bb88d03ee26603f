// Package config loads the jellyfix JSON settings file.
//
// Settings are layered: built-in defaults, then ~/.config/jellyfix/config.json,
// then JELLYFIX_* environment variables (for example
// JELLYFIX_SUBTITLES_REMOVE_FOREIGN=false). TMDB_API_KEY is used when no key
// is configured. The loaded *Config is passed explicitly to every component.
package config
