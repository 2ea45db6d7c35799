// Package config loads generation settings from a YAML (or JSON) file and
// command line flags. Flags that are set win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jptrs93/brsproto/internal/ir"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ProtoPaths   []string `yaml:"protoPaths"`
	ImportPaths  []string `yaml:"importPaths"`
	OutDir       string   `yaml:"outDir"`
	EmbedDir     string   `yaml:"embedDir"`
	DecodeCase   string   `yaml:"decodeCase"`
	EmitDefaults bool     `yaml:"emitDefaults"`
	FixtureDir   string   `yaml:"fixtureDir"`
	LogLevel     string   `yaml:"logLevel"`
	Parallelism  int      `yaml:"parallelism"`
}

func Default() Config {
	return Config{
		OutDir:     "generated/source",
		DecodeCase: "both",
		FixtureDir: "fixtures/baseline",
		LogLevel:   "info",
	}
}

// Load reads path over the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.ProtoPaths) == 0 {
		return fmt.Errorf("protoPaths: at least one proto file, directory or glob is required")
	}
	if strings.TrimSpace(c.OutDir) == "" {
		return fmt.Errorf("outDir: must not be empty")
	}
	if _, err := ir.ParseCaseStyle(c.DecodeCase); err != nil {
		return fmt.Errorf("decodeCase: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logLevel: unknown level %q", c.LogLevel)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism: must not be negative, got %d", c.Parallelism)
	}
	return nil
}

// CaseStyle returns the parsed decode case. Call Validate first.
func (c Config) CaseStyle() ir.CaseStyle {
	style, _ := ir.ParseCaseStyle(c.DecodeCase)
	return style
}

const (
	flagConfig       = "config"
	flagProtoPath    = "proto-path"
	flagImportPath   = "import-path"
	flagOutDir       = "out-dir"
	flagEmbedDir     = "embed-dir"
	flagDecodeCase   = "decode-case"
	flagEmitDefaults = "emit-defaults"
	flagFixtureDir   = "fixture-dir"
	flagLogLevel     = "log-level"
	flagParallelism  = "parallelism"
)

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(flagConfig, "", "YAML or JSON config file")
	fs.StringSlice(flagProtoPath, nil, "proto file, directory or glob (repeatable)")
	fs.StringSlice(flagImportPath, nil, "proto import path (repeatable)")
	fs.String(flagOutDir, d.OutDir, "output directory for generated BrightScript")
	fs.String(flagEmbedDir, d.EmbedDir, "directory the output tree is mirrored into")
	fs.String(flagDecodeCase, d.DecodeCase, "decoded key style: snake, camel or both")
	fs.Bool(flagEmitDefaults, d.EmitDefaults, "decoders pre-populate singular fields with defaults")
	fs.String(flagFixtureDir, d.FixtureDir, "output directory for baseline fixtures")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.Int(flagParallelism, d.Parallelism, "render workers, 0 means GOMAXPROCS")
}

// FromFlags loads the --config file, if any, and applies the flags that were
// set explicitly. Positional args are appended to the proto paths.
func FromFlags(fs *pflag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	if path, _ := fs.GetString(flagConfig); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}
	set(flagProtoPath, func() (e error) { cfg.ProtoPaths, e = fs.GetStringSlice(flagProtoPath); return })
	set(flagImportPath, func() (e error) { cfg.ImportPaths, e = fs.GetStringSlice(flagImportPath); return })
	set(flagOutDir, func() (e error) { cfg.OutDir, e = fs.GetString(flagOutDir); return })
	set(flagEmbedDir, func() (e error) { cfg.EmbedDir, e = fs.GetString(flagEmbedDir); return })
	set(flagDecodeCase, func() (e error) { cfg.DecodeCase, e = fs.GetString(flagDecodeCase); return })
	set(flagEmitDefaults, func() (e error) { cfg.EmitDefaults, e = fs.GetBool(flagEmitDefaults); return })
	set(flagFixtureDir, func() (e error) { cfg.FixtureDir, e = fs.GetString(flagFixtureDir); return })
	set(flagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(flagLogLevel); return })
	set(flagParallelism, func() (e error) { cfg.Parallelism, e = fs.GetInt(flagParallelism); return })
	if err != nil {
		return cfg, err
	}
	cfg.ProtoPaths = append(cfg.ProtoPaths, args...)
	return cfg, nil
}
