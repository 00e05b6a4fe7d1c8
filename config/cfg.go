package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/ByLCY/deckflow/layout"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// AppName names loggers, log files and the CLI.
const AppName = "deckflow"

type (
	ConversionConfig struct {
		Template     string            `yaml:"template" validate:"required"`
		Layout       string            `yaml:"layout"`
		MarginTop    float64           `yaml:"margin_top" validate:"gte=0"`
		MarginBottom float64           `yaml:"margin_bottom" validate:"gte=0"`
		BreakLevel   int               `yaml:"break_level" validate:"min=1,max=6"`
		TemplatesDir string            `yaml:"templates_dir"`
		SystemFonts  bool              `yaml:"system_fonts"`
		Fonts        map[string]string `yaml:"fonts" validate:"dive,keys,required,endkeys,required"`
		Overwrite    bool              `yaml:"overwrite"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Conversion ConversionConfig `yaml:"conversion"`
		Logging    LoggingConfig    `yaml:"logging"`
	}
)

// Budget returns the vertical page budget for a slide of the given height.
func (c *ConversionConfig) Budget(slideHeight float64) layout.Budget {
	b := layout.NewBudget(slideHeight, c.MarginTop, c.MarginBottom)
	b.BreakLevel = c.BreakLevel
	return b
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
