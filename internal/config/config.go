package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Pipeline holds every tunable the ingest/mapping/cleaning components use.
// Components take these values explicitly rather than reading process-wide
// state, so two pipelines with different settings can coexist.
type Pipeline struct {
	// Ingest: sheet selection and header detection.
	SheetPreviewRows   int `mapstructure:"sheet_preview_rows" yaml:"sheet_preview_rows"`
	SheetMinRows       int `mapstructure:"sheet_min_rows" yaml:"sheet_min_rows"`
	SheetMinCols       int `mapstructure:"sheet_min_cols" yaml:"sheet_min_cols"`
	HeaderSearchWindow int `mapstructure:"header_search_window" yaml:"header_search_window"`

	// Schema mapper fuzzy-match acceptance thresholds.
	FuzzyThresholdDefault float64 `mapstructure:"fuzzy_threshold_default" yaml:"fuzzy_threshold_default"`
	FuzzyThresholdID      float64 `mapstructure:"fuzzy_threshold_id" yaml:"fuzzy_threshold_id"`

	// Cleaning quality heuristics.
	CoercionWarnRatio float64 `mapstructure:"coercion_warn_ratio" yaml:"coercion_warn_ratio"`
	UnknownWarnRatio  float64 `mapstructure:"unknown_warn_ratio" yaml:"unknown_warn_ratio"`
	LowFillWarnRatio  float64 `mapstructure:"low_fill_warn_ratio" yaml:"low_fill_warn_ratio"`

	// MappingPath is where the confirmed field mapping is persisted.
	MappingPath string `mapstructure:"mapping_path" yaml:"mapping_path"`
}

// Default returns the stock pipeline settings.
func Default() Pipeline {
	return Pipeline{
		SheetPreviewRows:      60,
		SheetMinRows:          5,
		SheetMinCols:          5,
		HeaderSearchWindow:    25,
		FuzzyThresholdDefault: 0.74,
		FuzzyThresholdID:      0.78,
		CoercionWarnRatio:     0.30,
		UnknownWarnRatio:      0.95,
		LowFillWarnRatio:      0.05,
	}
}

// Load loads pipeline configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Pipeline, error) {
	v := viper.New()
	v.SetEnvPrefix("SMELENS")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("sheet_preview_rows", d.SheetPreviewRows)
	v.SetDefault("sheet_min_rows", d.SheetMinRows)
	v.SetDefault("sheet_min_cols", d.SheetMinCols)
	v.SetDefault("header_search_window", d.HeaderSearchWindow)
	v.SetDefault("fuzzy_threshold_default", d.FuzzyThresholdDefault)
	v.SetDefault("fuzzy_threshold_id", d.FuzzyThresholdID)
	v.SetDefault("coercion_warn_ratio", d.CoercionWarnRatio)
	v.SetDefault("unknown_warn_ratio", d.UnknownWarnRatio)
	v.SetDefault("low_fill_warn_ratio", d.LowFillWarnRatio)
	v.SetDefault("mapping_path", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".smelens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Pipeline
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MappingPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.MappingPath = filepath.Join(home, ".smelens", "mapping.json")
	}
	return &c, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.smelens/config.yaml, creating the directory if
// necessary.
func Save(c *Pipeline, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".smelens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
