package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/spf13/viper"
)

// Config is the settings surface read by the scanner, planner and executor.
// It is read-only for the duration of one planning pass.
type Config struct {
	Subtitles SubtitlesConfig `mapstructure:"subtitles" json:"subtitles"`
	Organize  OrganizeConfig  `mapstructure:"organize" json:"organize"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup" json:"cleanup"`
	Metadata  MetadataConfig  `mapstructure:"metadata" json:"metadata"`
	Artwork   ArtworkConfig   `mapstructure:"artwork" json:"artwork"`
	Watch     WatchConfig     `mapstructure:"watch" json:"watch"`
	Logging   logging.Config  `mapstructure:"logging" json:"logging"`
}

// SubtitlesConfig controls subtitle language handling
type SubtitlesConfig struct {
	// KeptLanguages are canonical 3-letter codes that are never removed as foreign.
	KeptLanguages      []string `mapstructure:"kept_languages" json:"kept_languages"`
	RenameVariants     bool     `mapstructure:"rename_variants" json:"rename_variants"`
	RemoveVariants     bool     `mapstructure:"remove_variants" json:"remove_variants"`
	AddMissingLanguage bool     `mapstructure:"add_missing_language" json:"add_missing_language"`
	RemoveForeign      bool     `mapstructure:"remove_foreign" json:"remove_foreign"`
	MinPortugueseWords int      `mapstructure:"min_portuguese_words" json:"min_portuguese_words"`
}

// OrganizeConfig controls video naming and folder layout
type OrganizeConfig struct {
	OrganizeFolders bool   `mapstructure:"organize_folders" json:"organize_folders"`
	AddQualityTag   bool   `mapstructure:"add_quality_tag" json:"add_quality_tag"`
	UseProbe        bool   `mapstructure:"use_probe" json:"use_probe"`
	FFProbeBinary   string `mapstructure:"ffprobe_binary" json:"ffprobe_binary"`
	RenameNFO       bool   `mapstructure:"rename_nfo" json:"rename_nfo"`
	DryRun          bool   `mapstructure:"dry_run" json:"dry_run"`
}

// CleanupConfig controls removal of files that are not media
type CleanupConfig struct {
	RemoveNonMedia   bool `mapstructure:"remove_non_media" json:"remove_non_media"`
	HiddenAsNonMedia bool `mapstructure:"hidden_as_non_media" json:"hidden_as_non_media"`
}

// MetadataConfig configures the remote metadata resolver
type MetadataConfig struct {
	Enabled        bool   `mapstructure:"enabled" json:"enabled"`
	TMDBAPIKey     string `mapstructure:"tmdb_api_key" json:"tmdb_api_key"`
	Language       string `mapstructure:"language" json:"language"`
	MinSearchWords int    `mapstructure:"min_search_words" json:"min_search_words"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	ProviderIDs    bool   `mapstructure:"provider_ids" json:"provider_ids"`
}

// ArtworkConfig configures poster downloads after apply
type ArtworkConfig struct {
	DownloadPosters bool   `mapstructure:"download_posters" json:"download_posters"`
	PosterSize      string `mapstructure:"poster_size" json:"poster_size"`
	CacheDays       int    `mapstructure:"cache_days" json:"cache_days"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceSeconds int `mapstructure:"debounce_seconds" json:"debounce_seconds"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Subtitles: SubtitlesConfig{
			KeptLanguages:      []string{"por", "eng"},
			RenameVariants:     true,
			RemoveVariants:     false,
			AddMissingLanguage: true,
			RemoveForeign:      true,
			MinPortugueseWords: 5,
		},
		Organize: OrganizeConfig{
			OrganizeFolders: true,
			AddQualityTag:   true,
			UseProbe:        false,
			FFProbeBinary:   "ffprobe",
			RenameNFO:       true,
			DryRun:          true,
		},
		Cleanup: CleanupConfig{
			RemoveNonMedia:   false,
			HiddenAsNonMedia: false,
		},
		Metadata: MetadataConfig{
			Enabled:        true,
			Language:       "pt-BR",
			MinSearchWords: 1,
			TimeoutSeconds: 10,
			ProviderIDs:    true,
		},
		Artwork: ArtworkConfig{
			DownloadPosters: false,
			PosterSize:      "medium",
			CacheDays:       30,
		},
		Watch: WatchConfig{
			DebounceSeconds: 10,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the settings file at path (or the default location when path is
// empty) over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("unable to get config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("JELLYFIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if err := registerDefaults(v, cfg); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if cfg.Metadata.TMDBAPIKey == "" {
		cfg.Metadata.TMDBAPIKey = os.Getenv("TMDB_API_KEY")
	}
	cfg.normalize()
	return cfg, nil
}

// registerDefaults flattens cfg into viper defaults so environment overrides
// apply to every key, including ones absent from the file.
func registerDefaults(v *viper.Viper, cfg *Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to encode defaults: %w", err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unable to decode defaults: %w", err)
	}
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]interface{}); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

func (c *Config) normalize() {
	kept := make([]string, 0, len(c.Subtitles.KeptLanguages))
	for _, lang := range c.Subtitles.KeptLanguages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			kept = append(kept, lang)
		}
	}
	c.Subtitles.KeptLanguages = kept
	if c.Subtitles.MinPortugueseWords <= 0 {
		c.Subtitles.MinPortugueseWords = 5
	}
	if c.Metadata.MinSearchWords <= 0 {
		c.Metadata.MinSearchWords = 1
	}
	if c.Organize.FFProbeBinary == "" {
		c.Organize.FFProbeBinary = "ffprobe"
	}
}

// Save writes the configuration as indented JSON to path, or to the default
// location when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("unable to encode config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// KeepsLanguage reports whether code (canonical form) is in the keep-list.
func (c *Config) KeepsLanguage(code string) bool {
	for _, lang := range c.Subtitles.KeptLanguages {
		if lang == code {
			return true
		}
	}
	return false
}
