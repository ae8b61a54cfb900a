// Package config provides the configuration loader for kiln.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const maxPort = 65535

// knownEngines are the browser names the vendor prefixer understands.
var knownEngines = map[string]struct{}{
	"chrome":  {},
	"edge":    {},
	"firefox": {},
	"ie":      {},
	"ios":     {},
	"opera":   {},
	"safari":  {},
}

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load walks up from cwd looking for kiln.yaml. Without one the defaults
// rooted at cwd are returned.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, found := findConfiguration(cwd)
	if !found {
		return domain.DefaultConfig(filepath.Clean(cwd))
	}
	return l.LoadFile(configPath)
}

// LoadFile reads the configuration at path. Relative paths inside the file
// resolve against the directory holding it.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	var kilnfile Kilnfile
	if err := readAndUnmarshalYAML(path, &kilnfile); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	return l.build(root, &kilnfile)
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) build(root string, kf *Kilnfile) (*domain.Config, error) {
	cfg, err := domain.DefaultConfig(root)
	if err != nil {
		return nil, err
	}

	entries, err := mergePaths(domain.DefaultPathEntries(), kf.Paths)
	if err != nil {
		return nil, err
	}

	srcRoot := resolveDir(root, kf.Src, domain.DefaultSourceDir)
	distRoot := resolveDir(root, kf.Dist, domain.DefaultOutputDir)

	registry, err := domain.NewRegistry(srcRoot, distRoot, entries)
	if err != nil {
		return nil, err
	}
	cfg.Registry = registry

	if len(kf.Browsers) > 0 {
		cfg.Browsers = l.browsers(kf.Browsers)
	}

	applyStyles(&cfg.Styles, kf.Styles)
	applyScripts(&cfg.Scripts, kf.Scripts)

	if q := kf.Images.JPEGQuality; q != nil {
		if *q < 1 || *q > 100 {
			return nil, zerr.With(domain.ErrInvalidQuality, "jpeg_quality", *q)
		}
		cfg.Images.JPEGQuality = *q
	}

	if kf.Server.Host != "" {
		cfg.Server.Host = kf.Server.Host
	}
	if p := kf.Server.Port; p != nil {
		if *p < 0 || *p > maxPort {
			return nil, zerr.With(domain.ErrInvalidPort, "port", *p)
		}
		cfg.Server.Port = *p
	}

	return cfg, nil
}

// mergePaths overlays the configured path entries on the defaults. Keys are
// category names or their task names.
func mergePaths(defaults []domain.PathEntry, overrides map[string]PathDTO) ([]domain.PathEntry, error) {
	byCategory := make(map[domain.Category]int, len(defaults))
	for i, e := range defaults {
		byCategory[e.Category] = i
	}

	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		category, err := domain.ParseCategory(key)
		if err != nil {
			return nil, err
		}

		dto := overrides[key]
		entry := &defaults[byCategory[category]]
		if dto.Src != "" {
			entry.SourceGlob = dto.Src
			entry.WatchGlob = dto.Src
		}
		if dto.Watch != "" {
			entry.WatchGlob = dto.Watch
		}
		if dto.Dest != nil {
			entry.OutputDir = *dto.Dest
		}
	}

	for _, e := range defaults {
		for _, pattern := range []string{e.SourceGlob, e.WatchGlob} {
			if _, err := fs.CompileGlob(pattern); err != nil {
				return nil, zerr.With(err, "category", string(e.Category))
			}
		}
	}

	return defaults, nil
}

func (l *Loader) browsers(configured map[string]string) []domain.Browser {
	out := make([]domain.Browser, 0, len(configured))
	for _, name := range slices.Sorted(maps.Keys(configured)) {
		if _, ok := knownEngines[name]; !ok {
			l.Logger.Warn("ignoring unknown browser '" + name + "' in " + domain.ConfigFileName)
			continue
		}
		out = append(out, domain.Browser{Name: name, Version: configured[name]})
	}
	return out
}

func applyStyles(opts *domain.StyleOptions, dto StylesDTO) {
	if dto.MinSuffix != nil {
		opts.MinSuffix = *dto.MinSuffix
	}
	if dto.Indent != nil && *dto.Indent >= 0 {
		opts.Indent = *dto.Indent
	}
	if dto.SassBinary != "" {
		opts.SassBinary = dto.SassBinary
	}
}

func applyScripts(opts *domain.ScriptOptions, dto ScriptsDTO) {
	if dto.Bundle != "" {
		opts.Bundle = dto.Bundle
	}
	if dto.Minify != nil {
		opts.Minify = *dto.Minify
	}
	if dto.SourceMap != nil {
		opts.SourceMap = *dto.SourceMap
	}
}

func resolveDir(root, configured, fallback string) string {
	if configured == "" {
		configured = fallback
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(root, configured)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered or passed explicitly by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
