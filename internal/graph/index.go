package graph

import (
	"strings"

	"github.com/morozRed/fura/internal/store"
)

// Target is what an import specifier resolved to.
type Target struct {
	ID     uint
	Kind   string // store.RefFile | store.RefPackage | store.RefUnknown
	Remark string // unresolved path, only for unknown targets
}

// Index maps canonical paths and package names to store ids for one scan.
// It is built once after base data is inserted and only read afterwards.
type Index struct {
	root     string
	files    map[string]uint
	dirs     map[string]uint
	packages map[string]uint
}

// NewIndex builds the lookup tables from freshly inserted rows.
func NewIndex(root string, dirs []store.DirModel, files []store.FileModel, packages []store.PackageModel) *Index {
	idx := &Index{
		root:     strings.TrimSuffix(root, "/"),
		files:    make(map[string]uint, len(files)),
		dirs:     make(map[string]uint, len(dirs)),
		packages: make(map[string]uint, len(packages)),
	}
	for _, d := range dirs {
		idx.dirs[d.Path] = d.ID
	}
	for _, f := range files {
		idx.files[f.Path] = f.ID
	}
	for _, p := range packages {
		idx.packages[p.Name] = p.ID
	}
	return idx
}

// Root returns the scan root the index was built for.
func (idx *Index) Root() string {
	return idx.root
}

// Contains reports whether p lies strictly below the scan root.
func (idx *Index) Contains(p string) bool {
	return strings.HasPrefix(p, idx.root+"/")
}

// HasFile reports whether p is a scanned file.
func (idx *Index) HasFile(p string) bool {
	_, ok := idx.files[p]
	return ok
}

// FileID returns the id of the file at p.
func (idx *Index) FileID(p string) (uint, bool) {
	id, ok := idx.files[p]
	return id, ok
}

// PackageID probes growing prefixes of specifier ("a", "a/b", "a/b/c") and returns
// the first declared package name. The shortest registered prefix wins.
func (idx *Index) PackageID(specifier string) (uint, bool) {
	segments := strings.Split(specifier, "/")
	for i := 1; i <= len(segments); i++ {
		if id, ok := idx.packages[strings.Join(segments[:i], "/")]; ok {
			return id, true
		}
	}
	return 0, false
}

// Lookup classifies p by probing files, then directories, then packages.
// Directories are never valid targets and resolve to unknown with p kept as
// the remark.
func (idx *Index) Lookup(p string) Target {
	if id, ok := idx.files[p]; ok {
		return Target{ID: id, Kind: store.RefFile}
	}
	if _, ok := idx.dirs[p]; ok {
		return Target{Kind: store.RefUnknown, Remark: p}
	}
	if id, ok := idx.PackageID(p); ok {
		return Target{ID: id, Kind: store.RefPackage}
	}
	return Target{Kind: store.RefUnknown, Remark: p}
}
