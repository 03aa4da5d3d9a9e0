// Package config holds the settings of the dbml command.
//
// Values are layered: built-in defaults, then the YAML config file, then
// DBML_* environment variables, then command line flags. Every field is a
// null type so a layer only overrides what it actually sets.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/dbml/inspect"
)

// DefaultFileName is looked up in the working directory when no config path
// is given.
const DefaultFileName = ".dbml.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidFormat is returned by Validate for an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

type Rules struct {
	BareIndex    null.Bool `yaml:"bare_index" envconfig:"DBML_RULES_BARE_INDEX"`
	SectionOrder null.Bool `yaml:"section_order" envconfig:"DBML_RULES_SECTION_ORDER"`
}

type Config struct {
	Format  null.String `yaml:"format" envconfig:"DBML_FORMAT"`
	NoColor null.Bool   `yaml:"no_color" envconfig:"DBML_NO_COLOR"`
	Rules   Rules       `yaml:"rules" ignored:"true"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:  null.StringFrom(FormatText),
		NoColor: null.BoolFrom(false),
		Rules: Rules{
			BareIndex:    null.BoolFrom(true),
			SectionOrder: null.BoolFrom(true),
		},
	}
}

// Apply returns c overridden by every valid field of cfg.
func (c Config) Apply(cfg Config) Config {
	if cfg.Format.Valid {
		c.Format = cfg.Format
	}
	if cfg.NoColor.Valid {
		c.NoColor = cfg.NoColor
	}
	c.Rules = c.Rules.Apply(cfg.Rules)
	return c
}

func (r Rules) Apply(cfg Rules) Rules {
	if cfg.BareIndex.Valid {
		r.BareIndex = cfg.BareIndex
	}
	if cfg.SectionOrder.Valid {
		r.SectionOrder = cfg.SectionOrder
	}
	return r
}

// Validate checks the consolidated settings.
func (c Config) Validate() error {
	switch c.Format.String {
	case FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("%w %q, expected %q or %q", ErrInvalidFormat, c.Format.String, FormatText, FormatJSON)
}

// InspectOptions converts the rule switches for the inspect package.
func (c Config) InspectOptions() inspect.Options {
	return inspect.Options{
		BareIndex:    c.Rules.BareIndex.Bool,
		SectionOrder: c.Rules.SectionOrder.Bool,
	}
}

// ReadFile reads a YAML config file. A missing file yields an empty
// Config unless required is set.
func ReadFile(afs afero.Fs, path string, required bool) (Config, error) {
	var conf Config
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return conf, nil
		}
		return conf, fmt.Errorf("couldn't read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("couldn't parse config file %q: %w", path, err)
	}
	return conf, nil
}

// ReadEnv reads DBML_* variables from env. NO_COLOR disables colors even
// when empty.
func ReadEnv(env map[string]string) (Config, error) {
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	var conf Config
	if err := envconfig.Process("", &conf, lookup); err != nil {
		return conf, err
	}
	if err := envconfig.Process("", &conf.Rules, lookup); err != nil {
		return conf, err
	}
	if _, ok := env["NO_COLOR"]; ok {
		conf.NoColor = null.BoolFrom(true)
	}
	return conf, nil
}

// FlagSet returns the flags that override config values.
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("format", "f", FormatText, "output `format`, text or json")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("bare-index", true, "report index declarations outside an indexes block")
	flags.Bool("section-order", true, "report table sections out of order")
	return flags
}

// FromFlags reads the flags of FlagSet that were set explicitly.
func FromFlags(flags *pflag.FlagSet) (Config, error) {
	var conf Config
	var err error
	if conf.Format, err = getNullString(flags, "format"); err != nil {
		return conf, err
	}
	if conf.NoColor, err = getNullBool(flags, "no-color"); err != nil {
		return conf, err
	}
	if conf.Rules.BareIndex, err = getNullBool(flags, "bare-index"); err != nil {
		return conf, err
	}
	if conf.Rules.SectionOrder, err = getNullBool(flags, "section-order"); err != nil {
		return conf, err
	}
	return conf, nil
}

func getNullBool(flags *pflag.FlagSet, key string) (null.Bool, error) {
	if flags.Lookup(key) == nil || !flags.Changed(key) {
		return null.Bool{}, nil
	}
	v, err := flags.GetBool(key)
	if err != nil {
		return null.Bool{}, err
	}
	return null.BoolFrom(v), nil
}

func getNullString(flags *pflag.FlagSet, key string) (null.String, error) {
	if flags.Lookup(key) == nil || !flags.Changed(key) {
		return null.String{}, nil
	}
	v, err := flags.GetString(key)
	if err != nil {
		return null.String{}, err
	}
	return null.StringFrom(v), nil
}

// Load consolidates every layer. An empty path falls back to
// DBML_CONFIG and then to DefaultFileName; only an explicit path must exist.
func Load(afs afero.Fs, path string, env map[string]string, flags *pflag.FlagSet) (Config, error) {
	required := path != ""
	if path == "" {
		if v, ok := env["DBML_CONFIG"]; ok && v != "" {
			path, required = v, true
		} else {
			path = DefaultFileName
		}
	}

	fileConf, err := ReadFile(afs, path, required)
	if err != nil {
		return Config{}, err
	}
	envConf, err := ReadEnv(env)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't read environment: %w", err)
	}
	conf := Default().Apply(fileConf).Apply(envConf)
	if flags != nil {
		flagConf, err := FromFlags(flags)
		if err != nil {
			return Config{}, err
		}
		conf = conf.Apply(flagConf)
	}
	return conf, conf.Validate()
}
