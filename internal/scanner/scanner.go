package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/morozRed/fura/internal/ignore"
	"github.com/morozRed/fura/internal/parser"
)

// Directory is a scanned directory. Paths are absolute and slash separated.
type Directory struct {
	Name       string
	Path       string
	ParentPath string
	Depth      int
}

// File is a scanned file.
type File struct {
	Name       string
	Path       string
	ParentPath string
	Size       int64
	Type       FileType
}

// Snapshot is everything one scan produced.
type Snapshot struct {
	Root        string
	Directories []Directory
	Files       []File
	Packages    []Package
	Issues      []parser.ParseIssue
}

// SourceFiles returns the files classified as js or ts.
func (s *Snapshot) SourceFiles() []File {
	out := make([]File, 0, len(s.Files))
	for _, f := range s.Files {
		if f.Type.IsSource() {
			out = append(out, f)
		}
	}
	return out
}

// Scan walks root depth-first in lexical order. Entries matched by exclude
// (or ignore.DefaultExcludes) are skipped at any depth. Unreadable entries are
// recorded as warnings and skipped.
func Scan(root string, exclude []string) (*Snapshot, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	matcher := ignore.NewMatcher(exclude)
	rootSlash := filepath.ToSlash(absRoot)
	snap := &Snapshot{Root: rootSlash}
	depths := map[string]int{rootSlash: 0}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		slashPath := filepath.ToSlash(p)
		relPath, _ := filepath.Rel(absRoot, p)
		relPath = filepath.ToSlash(relPath)

		if walkErr != nil {
			if slashPath == rootSlash {
				return walkErr
			}
			snap.Issues = append(snap.Issues, parser.ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", walkErr),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.ShouldIgnore(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parent := path.Dir(slashPath)
		if d.IsDir() {
			depth := 0
			if slashPath != rootSlash {
				depth = depths[parent] + 1
			}
			depths[slashPath] = depth
			snap.Directories = append(snap.Directories, Directory{
				Name:       d.Name(),
				Path:       slashPath,
				ParentPath: parent,
				Depth:      depth,
			})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			snap.Issues = append(snap.Issues, parser.ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("stat error: %v", err),
			})
			return nil
		}
		snap.Files = append(snap.Files, File{
			Name:       d.Name(),
			Path:       slashPath,
			ParentPath: parent,
			Size:       fi.Size(),
			Type:       FileTypeOf(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	packages, err := ReadManifest(absRoot)
	if err != nil {
		return nil, err
	}
	snap.Packages = packages
	return snap, nil
}
