// Package config loads, merges and persists the user-configuration file.
//
// The on-disk format is the key="value" line format documented by the
// specification: one assignment per line, values always double-quoted.
// Unlike the rest of this program the format itself is an external
// collaborator (spec §1) — the parser here exists so the program has
// something real to read and write, not because its exact bytes are the
// part under test.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenPeeDeeP/xdg"
)

// ConfigVersion is bumped whenever a default changes shape in a way that
// requires regenerating stale config files (see Load).
const ConfigVersion = 1

// ProcSorting enumerates the columns the process table can sort on.
type ProcSorting string

const (
	SortPID           ProcSorting = "pid"
	SortProgram       ProcSorting = "program"
	SortArguments     ProcSorting = "arguments"
	SortThreads       ProcSorting = "threads"
	SortUser          ProcSorting = "user"
	SortMemory        ProcSorting = "memory"
	SortCPULazy       ProcSorting = "cpu lazy"
	SortCPUResponsive ProcSorting = "cpu responsive"
)

var validSortings = map[ProcSorting]bool{
	SortPID: true, SortProgram: true, SortArguments: true, SortThreads: true,
	SortUser: true, SortMemory: true, SortCPULazy: true, SortCPUResponsive: true,
}

// Config holds every user-configurable value from spec §6.
type Config struct {
	Version          int
	ColorTheme       string
	UpdateMs         int
	ProcSorting      ProcSorting
	ProcReversed     bool
	CheckTemp        bool
	DrawClock        string
	BackgroundUpdate bool
	CustomCPUName    string
	ErrorLogging     bool
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		Version:          ConfigVersion,
		ColorTheme:       "Default",
		UpdateMs:         2000,
		ProcSorting:      SortCPULazy,
		ProcReversed:     false,
		CheckTemp:        true,
		DrawClock:        "%X",
		BackgroundUpdate: true,
		CustomCPUName:    "",
		ErrorLogging:     true,
	}
}

// Dir resolves (and creates) the XDG config directory for the program.
func Dir(name string) (string, error) {
	if env := os.Getenv("CONFIG_DIR"); env != "" {
		if err := os.MkdirAll(env, 0o755); err != nil {
			return "", err
		}
		return env, nil
	}
	dirs := xdg.New("", name)
	dir := dirs.ConfigHome()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func configPath(dir string) string {
	return filepath.Join(dir, "config")
}

// Load reads dir's config file, creating it from defaults if absent, and
// regenerating it (preserving any user values it can) if its version stamp
// no longer matches ConfigVersion.
func Load(dir string) (Config, error) {
	cfg := Defaults()
	path := configPath(dir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, Save(dir, cfg)
	}
	if err != nil {
		return cfg, err
	}

	values, err := parse(string(data))
	if err != nil {
		return cfg, err
	}
	applyValues(&cfg, values)

	if cfg.Version != ConfigVersion {
		cfg.Version = ConfigVersion
		return cfg, Save(dir, cfg)
	}

	return cfg, nil
}

// Save writes cfg to dir's config file in the key="value" line format.
func Save(dir string, cfg Config) error {
	path := configPath(dir)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range render(cfg) {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func parse(content string) (map[string]string, error) {
	values := make(map[string]string)
	for lineNum, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("config line %d: missing '='", lineNum+1)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		value = strings.TrimPrefix(value, `"`)
		value = strings.TrimSuffix(value, `"`)
		values[key] = value
	}
	return values, nil
}

func applyValues(cfg *Config, values map[string]string) {
	if v, ok := values["version"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Version = n
		}
	}
	if v, ok := values["color_theme"]; ok {
		cfg.ColorTheme = v
	}
	if v, ok := values["update_ms"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 100 && n <= 86_400_000 {
			cfg.UpdateMs = n
		}
	}
	if v, ok := values["proc_sorting"]; ok {
		if validSortings[ProcSorting(v)] {
			cfg.ProcSorting = ProcSorting(v)
		}
	}
	if v, ok := values["proc_reversed"]; ok {
		cfg.ProcReversed = v == "true"
	}
	if v, ok := values["check_temp"]; ok {
		cfg.CheckTemp = v == "true"
	}
	if v, ok := values["draw_clock"]; ok {
		cfg.DrawClock = v
	}
	if v, ok := values["background_update"]; ok {
		cfg.BackgroundUpdate = v == "true"
	}
	if v, ok := values["custom_cpu_name"]; ok {
		cfg.CustomCPUName = v
	}
	if v, ok := values["error_logging"]; ok {
		cfg.ErrorLogging = v == "true"
	}
}

// Render formats cfg in the on-disk key="value" line format, one
// assignment per line, sorted by key.
func Render(cfg Config) string {
	return strings.Join(render(cfg), "\n") + "\n"
}

func render(cfg Config) []string {
	b := func(v bool) string {
		if v {
			return "true"
		}
		return "false"
	}
	kv := map[string]string{
		"version":           strconv.Itoa(cfg.Version),
		"color_theme":       cfg.ColorTheme,
		"update_ms":         strconv.Itoa(cfg.UpdateMs),
		"proc_sorting":      string(cfg.ProcSorting),
		"proc_reversed":     b(cfg.ProcReversed),
		"check_temp":        b(cfg.CheckTemp),
		"draw_clock":        cfg.DrawClock,
		"background_update": b(cfg.BackgroundUpdate),
		"custom_cpu_name":   cfg.CustomCPUName,
		"error_logging":     b(cfg.ErrorLogging),
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf(`%s="%s"`, k, kv[k]))
	}
	return lines
}
