// Package config loads the two optional, spec-silent project-level inputs
// described in SPEC_FULL.md §1.3: a typst.toml project manifest and a YAML
// package lock feeding the module loader's optional PackageResolver. Neither
// is part of the core evaluator contract (spec §6); both are loaded once by
// the CLI and threaded in alongside loadBytes/currentTime.
//
// Grounded on sambeau-basil's server/config/load.go (read file, interpolate,
// unmarshal into a defaults-seeded struct, resolve relative paths against
// the config file's own directory) - we keep that read-then-resolve shape
// for both the toml manifest and the yaml lock.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest is a project's typst.toml package declaration.
type Manifest struct {
	Package PackageInfo `toml:"package"`
}

// PackageInfo holds the [package] table of typst.toml.
type PackageInfo struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	Entrypoint string `toml:"entrypoint"`
	Authors    []string `toml:"authors"`
}

// LoadManifest reads and parses a typst.toml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}
	if m.Package.Entrypoint == "" {
		m.Package.Entrypoint = "main.typ"
	}
	return &m, nil
}

// EntrypointPath resolves the manifest's entrypoint relative to the
// manifest file's own directory.
func (m *Manifest) EntrypointPath(manifestPath string) string {
	if filepath.IsAbs(m.Package.Entrypoint) {
		return m.Package.Entrypoint
	}
	return filepath.Join(filepath.Dir(manifestPath), m.Package.Entrypoint)
}

// LockEntry is one resolved package in a packages.lock.yaml file.
type LockEntry struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Path      string `yaml:"path"`
}

// Lock is a parsed packages.lock.yaml: a flat list of namespace/name/version
// entries, each resolved to a local cache path.
type Lock struct {
	baseDir string
	entries []LockEntry
}

// LoadLock reads and parses a packages.lock.yaml file.
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package lock %q: %w", path, err)
	}
	var raw struct {
		Packages []LockEntry `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse package lock %q: %w", path, err)
	}
	return &Lock{baseDir: filepath.Dir(path), entries: raw.Packages}, nil
}

// parseSpec splits "@namespace/name:version" into its three parts.
func parseSpec(spec string) (namespace, name, version string, err error) {
	spec = strings.TrimPrefix(spec, "@")
	slash := strings.Index(spec, "/")
	if slash < 0 {
		return "", "", "", fmt.Errorf("invalid package spec %q: missing namespace", spec)
	}
	namespace = spec[:slash]
	rest := spec[slash+1:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", "", fmt.Errorf("invalid package spec %q: missing version", spec)
	}
	return namespace, rest[:colon], rest[colon+1:], nil
}

// Resolve implements eval.PackageResolver: it looks spec up in the lock's
// entries and returns a path relative to the lock file's own directory.
// This satisfies the interface by duck typing alone - internal/config never
// imports internal/eval.
func (l *Lock) Resolve(spec string) (string, error) {
	namespace, name, version, err := parseSpec(spec)
	if err != nil {
		return "", err
	}
	for _, e := range l.entries {
		if e.Namespace == namespace && e.Name == name && e.Version == version {
			if filepath.IsAbs(e.Path) {
				return e.Path, nil
			}
			return filepath.Join(l.baseDir, e.Path), nil
		}
	}
	return "", fmt.Errorf("package %q is not present in the lock file", spec)
}
