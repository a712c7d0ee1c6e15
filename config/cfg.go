// Package config defines program configuration and prepares shared services
// (logging) from it.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type (
	// ImagesConfig controls the image download/validation collaborator.
	ImagesConfig struct {
		Max             int     `yaml:"max"`
		MinDimension    int     `yaml:"min_dimension"`
		MaxDimension    int     `yaml:"max_dimension"`
		JPEGQuality     int     `yaml:"jpeg_quality_level"`
		DownloadTimeout int     `yaml:"download_timeout_sec"`
		DownloadWorkers int     `yaml:"download_workers"`
		SVGRasterSize   int     `yaml:"svg_raster_size"`
		ScaleFactor     float64 `yaml:"scale_factor"`
	}

	// ExtractConfig controls article extraction.
	ExtractConfig struct {
		Timeout            int `yaml:"timeout_sec"`
		MinParagraphLength int `yaml:"min_paragraph_length"`
	}

	// DocumentConfig controls rendering of the output document.
	DocumentConfig struct {
		FontFamily            string        `yaml:"font_family,omitempty"`
		OutputNameTemplate    string        `yaml:"output_name_template,omitempty"`
		FileNameTransliterate bool          `yaml:"transliterate_file_names"`
		Images                ImagesConfig  `yaml:"images"`
		Extract               ExtractConfig `yaml:"extract"`
	}

	LoggerConfig struct {
		Level       string `yaml:"level"`
		Destination string `yaml:"destination,omitempty"`
		Mode        string `yaml:"mode,omitempty"`
	}

	LoggingConfig struct {
		FileLogger    LoggerConfig `yaml:"file"`
		ConsoleLogger LoggerConfig `yaml:"console"`
	}

	Config struct {
		Document DocumentConfig `yaml:"document"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

// LoadConfiguration returns configuration - embedded defaults overlaid with
// values from the optional YAML file.
func LoadConfiguration(fname string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfig, cfg); err != nil {
		// embedded defaults are part of the binary, this cannot happen
		return nil, fmt.Errorf("unable to parse embedded configuration: %w", err)
	}

	if len(fname) == 0 {
		return cfg, nil
	}

	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration file %q: %w", fname, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration file %q: %w", fname, err)
	}
	return cfg, nil
}

// Prepare returns embedded default configuration text.
func Prepare() ([]byte, error) {
	return append([]byte(nil), defaultConfig...), nil
}

// Dump serializes actual "active" configuration.
func Dump(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("unable to serialize configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
