package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%q): %v", path, err)
	}
	return path
}

func TestLoadManifestDefaultsEntrypoint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typst.toml", `
[package]
name = "mypkg"
version = "0.1.0"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package.Entrypoint != "main.typ" {
		t.Errorf("Entrypoint = %q, want default %q", m.Package.Entrypoint, "main.typ")
	}
}

func TestLoadManifestExplicitEntrypoint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typst.toml", `
[package]
name = "mypkg"
version = "0.1.0"
entrypoint = "src/lib.typ"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package.Entrypoint != "src/lib.typ" {
		t.Errorf("Entrypoint = %q, want %q", m.Package.Entrypoint, "src/lib.typ")
	}
}

func TestManifestEntrypointPathResolvesRelativeToManifestDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typst.toml", `
[package]
name = "mypkg"
version = "0.1.0"
entrypoint = "main.typ"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	got := m.EntrypointPath(path)
	want := filepath.Join(dir, "main.typ")
	if got != want {
		t.Errorf("EntrypointPath() = %q, want %q", got, want)
	}
}

func TestManifestEntrypointPathKeepsAbsolute(t *testing.T) {
	m := &Manifest{Package: PackageInfo{Entrypoint: "/abs/main.typ"}}
	if got := m.EntrypointPath("/whatever/typst.toml"); got != "/abs/main.typ" {
		t.Errorf("EntrypointPath() = %q, want %q", got, "/abs/main.typ")
	}
}

func TestLoadLockResolvesKnownPackage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "packages.lock.yaml", `
packages:
  - namespace: preview
    name: cetz
    version: 0.2.0
    path: cache/preview/cetz/0.2.0
`)
	lock, err := LoadLock(path)
	if err != nil {
		t.Fatalf("LoadLock: %v", err)
	}
	got, err := lock.Resolve("@preview/cetz:0.2.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(dir, "cache/preview/cetz/0.2.0")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestLoadLockUnknownPackageFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "packages.lock.yaml", `packages: []`)
	lock, err := LoadLock(path)
	if err != nil {
		t.Fatalf("LoadLock: %v", err)
	}
	if _, err := lock.Resolve("@preview/cetz:0.2.0"); err == nil {
		t.Fatal("expected error resolving a package absent from the lock")
	}
}

func TestLoadLockAbsolutePathPassesThrough(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "packages.lock.yaml", `
packages:
  - namespace: preview
    name: cetz
    version: 0.2.0
    path: /var/cache/cetz
`)
	lock, err := LoadLock(path)
	if err != nil {
		t.Fatalf("LoadLock: %v", err)
	}
	got, err := lock.Resolve("@preview/cetz:0.2.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "/var/cache/cetz" {
		t.Errorf("Resolve() = %q, want %q", got, "/var/cache/cetz")
	}
}

func TestParseSpecRejectsMissingNamespace(t *testing.T) {
	if _, _, _, err := parseSpec("cetz:0.2.0"); err == nil {
		t.Fatal("expected error for spec missing a namespace")
	}
}

func TestParseSpecRejectsMissingVersion(t *testing.T) {
	if _, _, _, err := parseSpec("@preview/cetz"); err == nil {
		t.Fatal("expected error for spec missing a version")
	}
}

func TestParseSpecSplitsFields(t *testing.T) {
	ns, name, version, err := parseSpec("@preview/cetz:0.2.0")
	if err != nil {
		t.Fatalf("parseSpec: %v", err)
	}
	if ns != "preview" || name != "cetz" || version != "0.2.0" {
		t.Errorf("parseSpec() = %q, %q, %q", ns, name, version)
	}
}
