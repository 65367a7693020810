package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PackageClass tells runtime dependencies apart from development ones.
type PackageClass string

const (
	PackageRuntime     PackageClass = "dependencies"
	PackageDevelopment PackageClass = "devDependencies"
)

// ManifestName is the package manifest read at the scan root.
const ManifestName = "package.json"

// Package is one declared dependency of the scanned project.
type Package struct {
	Name    string       `json:"name"`
	Version string       `json:"version"`
	Class   PackageClass `json:"type"`
}

type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ReadManifest reads root/package.json. A missing manifest yields no packages.
// Names declared in both maps keep the runtime classification.
func ReadManifest(root string) ([]Package, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", ManifestName, err)
	}
	return ParseManifest(data)
}

// ParseManifest extracts the dependency maps from manifest content.
func ParseManifest(data []byte) ([]Package, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
	}

	merged := make(map[string]Package, len(m.Dependencies)+len(m.DevDependencies))
	for name, version := range m.DevDependencies {
		merged[name] = Package{Name: name, Version: version, Class: PackageDevelopment}
	}
	for name, version := range m.Dependencies {
		merged[name] = Package{Name: name, Version: version, Class: PackageRuntime}
	}

	packages := make([]Package, 0, len(merged))
	for _, pkg := range merged {
		packages = append(packages, pkg)
	}
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
	return packages, nil
}
