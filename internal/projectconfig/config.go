// Package projectconfig parses vx.toml, the per-project manifest that
// pins tool version specs, settings, and scripts (spec §6).
package projectconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ToolSpec is one entry under [tools] or [tools.<tool>]. Version is any
// of: exact, range-partial, semver-op, or "latest" (spec §6).
type ToolSpec struct {
	Version string   `toml:"version"`
	OS      []string `toml:"os,omitempty"`
}

// Settings holds the [settings] table.
type Settings struct {
	AutoInstall     bool   `toml:"auto_install"`
	CacheDuration   string `toml:"cache_duration,omitempty"`
	ParallelInstall bool   `toml:"parallel_install"`
}

// rawToolSpec absorbs both the simple string form
// (`node = "20"`) and the extended table form
// (`[tools.node]\nversion = "20"`) during decode.
type rawToolSpec struct {
	asString string
	asTable  ToolSpec
}

func (r *rawToolSpec) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		r.asString = v
		return nil
	case map[string]interface{}:
		if ver, ok := v["version"].(string); ok {
			r.asTable.Version = ver
		}
		if osList, ok := v["os"].([]interface{}); ok {
			for _, o := range osList {
				if s, ok := o.(string); ok {
					r.asTable.OS = append(r.asTable.OS, s)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported tool spec shape: %T", data)
	}
}

func (r rawToolSpec) resolve() ToolSpec {
	if r.asString != "" {
		return ToolSpec{Version: r.asString}
	}
	return r.asTable
}

type rawConfig struct {
	Tools    map[string]rawToolSpec `toml:"tools"`
	Settings Settings               `toml:"settings"`
	Scripts  map[string]string      `toml:"scripts"`
	Env      map[string]string      `toml:"env"`
}

// Config is the parsed, normalized form of vx.toml.
type Config struct {
	Tools    map[string]ToolSpec
	Settings Settings
	Scripts  map[string]string
	Env      map[string]string
}

// Load reads and parses path. A missing file returns a zero-value
// Config with no tools, not an error — a project without vx.toml
// simply has nothing pinned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{Tools: map[string]ToolSpec{}, Scripts: map[string]string{}, Env: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}

	var raw rawConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}

	cfg := &Config{
		Tools:    make(map[string]ToolSpec, len(raw.Tools)),
		Settings: raw.Settings,
		Scripts:  raw.Scripts,
		Env:      raw.Env,
	}
	for name, r := range raw.Tools {
		cfg.Tools[name] = r.resolve()
	}
	return cfg, nil
}

// SupportsOS reports whether a tool's spec permits installation on
// goos (e.g. "linux", "darwin", "windows"). An empty OS restriction
// list means every platform is permitted.
func (s ToolSpec) SupportsOS(goos string) bool {
	if len(s.OS) == 0 {
		return true
	}
	for _, o := range s.OS {
		if o == goos {
			return true
		}
	}
	return false
}
