package htmlnorm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig is the configuration file schema. Unset fields leave the
// corresponding Config value alone.
type FileConfig struct {
	Formatting *bool  `yaml:"formatting" toml:"formatting" json:"formatting"`
	Tables     *bool  `yaml:"tables" toml:"tables" json:"tables"`
	Images     *bool  `yaml:"images" toml:"images" json:"images"`
	Links      *bool  `yaml:"links" toml:"links" json:"links"`
	BaseURL    string `yaml:"baseURL" toml:"baseURL" json:"baseURL"`

	Dedup struct {
		Enable         *bool  `yaml:"enable" toml:"enable" json:"enable"`
		MinSize        int    `yaml:"minSize" toml:"minSize" json:"minSize"`
		MaxRepetitions int    `yaml:"maxRepetitions" toml:"maxRepetitions" json:"maxRepetitions"`
		MaxEntries     int    `yaml:"maxEntries" toml:"maxEntries" json:"maxEntries"`
		TTL            string `yaml:"ttl" toml:"ttl" json:"ttl"`
	} `yaml:"dedup" toml:"dedup" json:"dedup"`

	PruneComments *bool `yaml:"pruneComments" toml:"pruneComments" json:"pruneComments"`
	MaxDepth      int   `yaml:"maxDepth" toml:"maxDepth" json:"maxDepth"`
	Workers       int   `yaml:"workers" toml:"workers" json:"workers"`
}

// LoadConfigFile reads YAML, TOML or JSON into FileConfig, picking the
// format from the file extension. Unknown extensions are tried as YAML,
// then TOML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("%w: %w", ErrConfigFile, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("%w: parse yaml: %w", ErrConfigFile, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("%w: parse toml: %w", ErrConfigFile, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("%w: parse json: %w", ErrConfigFile, err)
		}
	default:
		yerr := yaml.Unmarshal(b, &fc)
		if yerr == nil {
			break
		}
		fc = FileConfig{}
		terr := toml.Unmarshal(b, &fc)
		if terr == nil {
			break
		}
		fc = FileConfig{}
		if jerr := json.Unmarshal(b, &fc); jerr != nil {
			return fc, fmt.Errorf("%w: parse config: %v (yaml) / %v (toml) / %v (json)", ErrConfigFile, yerr, terr, jerr)
		}
	}
	if fc.Dedup.TTL != "" {
		if _, err := time.ParseDuration(fc.Dedup.TTL); err != nil {
			return fc, fmt.Errorf("%w: dedup.ttl: %w", ErrConfigFile, err)
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays the values set in fc onto cfg. Callers apply
// explicit flags afterwards so they win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setBool(&cfg.Formatting, fc.Formatting)
	setBool(&cfg.Tables, fc.Tables)
	setBool(&cfg.Images, fc.Images)
	setBool(&cfg.Links, fc.Links)
	setBool(&cfg.Deduplicate, fc.Dedup.Enable)
	setBool(&cfg.PruneComments, fc.PruneComments)

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.Dedup.MinSize > 0 {
		cfg.MinDuplicateCheckSize = fc.Dedup.MinSize
	}
	if fc.Dedup.MaxRepetitions > 0 {
		cfg.MaxRepetitions = fc.Dedup.MaxRepetitions
	}
	if fc.Dedup.MaxEntries > 0 {
		cfg.MaxDuplicateEntries = fc.Dedup.MaxEntries
	}
	if ttl, err := time.ParseDuration(fc.Dedup.TTL); err == nil && ttl >= 0 {
		cfg.DuplicateTTL = ttl
	}
	if fc.MaxDepth > 0 {
		cfg.MaxDepth = fc.MaxDepth
	}
	if fc.Workers > 0 {
		cfg.WorkerPoolSize = fc.Workers
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
