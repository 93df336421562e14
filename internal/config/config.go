// Package config loads fix-ascii-art settings. Sources are layered, later
// ones winning: built-in defaults, the project file, the environment, then
// command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jensroland/fix-ascii-art/internal/boxfix"
)

// FileName is the project config file looked up from the working directory.
const FileName = ".fix-ascii-art.yaml"

const envPrefix = "FIX_ASCII_ART_"

// Hook modes.
const (
	HookFix   = "fix"
	HookCheck = "check"
)

type Config struct {
	Normalize      bool     `yaml:"normalize"`
	Markdown       bool     `yaml:"markdown"`
	DriftRadius    int      `yaml:"drift_radius"`
	TabWidth       int      `yaml:"tab_width"`
	Journal        bool     `yaml:"journal"`
	SkipCodeFences bool     `yaml:"skip_code_fences"`
	Extensions     []string `yaml:"extensions"`
	Hook           Hook     `yaml:"hook"`
}

type Hook struct {
	Mode string `yaml:"mode"`
}

// Overrides is a sparse Config. Nil pointers and zero values mean "not set",
// so Merge can tell an explicit false from an absent flag.
type Overrides struct {
	Normalize      *bool
	Markdown       *bool
	Journal        *bool
	SkipCodeFences *bool
	DriftRadius    int
	TabWidth       int
	HookMode       string
}

func Defaults() Config {
	return Config{
		DriftRadius:    boxfix.DefaultDriftRadius,
		TabWidth:       boxfix.DefaultTabWidth,
		Journal:        true,
		SkipCodeFences: true,
		Extensions:     []string{".md", ".markdown", ".txt"},
		Hook:           Hook{Mode: HookFix},
	}
}

// Load reads a YAML config file on top of the defaults. Unknown keys are an
// error so that typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(raw)
}

// Parse decodes raw YAML on top of the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find walks up from dir looking for FileName. It returns "" when none exists.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve loads the explicit config path if given, otherwise the nearest
// project file above cwd, otherwise the defaults. The environment is applied
// on top. It returns the file used, or "".
func Resolve(explicit, cwd string, environ []string) (Config, string, error) {
	path := explicit
	if path == "" {
		path = Find(cwd)
	}

	cfg := Defaults()
	if path != "" {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return Config{}, path, fmt.Errorf("%s: %w", path, err)
		}
	}

	env, err := EnvOverlay(environ)
	if err != nil {
		return Config{}, path, err
	}
	cfg = Merge(cfg, env)
	return cfg, path, cfg.Validate()
}

// Merge applies the set fields of over to base.
func Merge(base Config, over Overrides) Config {
	out := base
	out.Extensions = append([]string(nil), base.Extensions...)
	if over.Normalize != nil {
		out.Normalize = *over.Normalize
	}
	if over.Markdown != nil {
		out.Markdown = *over.Markdown
	}
	if over.Journal != nil {
		out.Journal = *over.Journal
	}
	if over.SkipCodeFences != nil {
		out.SkipCodeFences = *over.SkipCodeFences
	}
	if over.DriftRadius != 0 {
		out.DriftRadius = over.DriftRadius
	}
	if over.TabWidth != 0 {
		out.TabWidth = over.TabWidth
	}
	if s := strings.TrimSpace(over.HookMode); s != "" {
		out.Hook.Mode = s
	}
	return out
}

// EnvOverlay builds Overrides from FIX_ASCII_ART_* variables. Supported:
// NORMALIZE, MARKDOWN, JOURNAL, SKIP_CODE_FENCES, DRIFT_RADIUS, TAB_WIDTH,
// HOOK_MODE. Other keys (HOME is the state dir) are ignored here.
func EnvOverlay(environ []string) (Overrides, error) {
	var over Overrides
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		key, val, ok := strings.Cut(strings.TrimPrefix(kv, envPrefix), "=")
		if !ok {
			continue
		}
		var err error
		switch key {
		case "NORMALIZE":
			over.Normalize, err = parseBool(key, val)
		case "MARKDOWN":
			over.Markdown, err = parseBool(key, val)
		case "JOURNAL":
			over.Journal, err = parseBool(key, val)
		case "SKIP_CODE_FENCES":
			over.SkipCodeFences, err = parseBool(key, val)
		case "DRIFT_RADIUS":
			over.DriftRadius, err = parseInt(key, val)
		case "TAB_WIDTH":
			over.TabWidth, err = parseInt(key, val)
		case "HOOK_MODE":
			over.HookMode = val
		}
		if err != nil {
			return Overrides{}, err
		}
	}
	return over, nil
}

func parseBool(key, val string) (*bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return &b, nil
}

func parseInt(key, val string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func (c Config) Validate() error {
	if c.DriftRadius <= 0 {
		return fmt.Errorf("drift_radius must be positive, got %d", c.DriftRadius)
	}
	if c.TabWidth <= 0 {
		return fmt.Errorf("tab_width must be positive, got %d", c.TabWidth)
	}
	if c.Hook.Mode != HookFix && c.Hook.Mode != HookCheck {
		return fmt.Errorf("hook.mode must be %q or %q, got %q", HookFix, HookCheck, c.Hook.Mode)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// Options converts the config into fixer options.
func (c Config) Options() boxfix.Options {
	return boxfix.Options{
		Normalize:   c.Normalize,
		DriftRadius: c.DriftRadius,
		TabWidth:    c.TabWidth,
	}
}

// Matches reports whether path has one of the configured extensions.
func (c Config) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// IsMarkdown reports whether path should be processed in markdown mode
// regardless of the markdown setting.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}
