package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/morozRed/fura/internal/relation"
	"github.com/morozRed/fura/internal/resolve"
	"github.com/morozRed/fura/internal/store"
	"github.com/morozRed/fura/internal/unused"
)

// ProjectFile is a scanned file with its documented identity, if any.
type ProjectFile struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	ParentPath string         `json:"parentPath"`
	Size       int64          `json:"size"`
	Type       string         `json:"type"`
	Attr       *relation.Attr `json:"attr"`
}

// GetProjectFiles lists every scanned file ordered by path.
func (e *Engine) GetProjectFiles(ctx context.Context) ([]ProjectFile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.readStore()
	if err != nil {
		return nil, err
	}

	files, err := store.Query[store.FileModel](ctx, s, store.Filter{Order: "path"})
	if err != nil {
		return nil, err
	}
	attrs, err := loadAttrs(ctx, s)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectFile, 0, len(files))
	for _, f := range files {
		out = append(out, ProjectFile{
			ID:         f.ID,
			Name:       f.Name,
			Path:       f.Path,
			ParentPath: f.ParentPath,
			Size:       f.Size,
			Type:       f.Type,
			Attr:       attrs[f.ID],
		})
	}
	return out, nil
}

// TreeNode is a directory or file in the project tree.
type TreeNode struct {
	ID       uint        `json:"id"`
	Kind     string      `json:"kind"` // dir | file
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Depth    int         `json:"depth,omitempty"`
	Size     int64       `json:"size,omitempty"`
	Type     string      `json:"type,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree is the nested directory layout plus id lookups. Directory and file
// ids come from separate tables and may overlap.
type Tree struct {
	Root    *TreeNode          `json:"root"`
	DirMap  map[uint]*TreeNode `json:"dirMap"`
	FileMap map[uint]*TreeNode `json:"fileMap"`
}

// GetProjectTree nests directories by depth and attaches each file to its
// parent directory.
func (e *Engine) GetProjectTree(ctx context.Context) (*Tree, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.readStore()
	if err != nil {
		return nil, err
	}

	dirs, err := store.Query[store.DirModel](ctx, s, store.Filter{Order: "depth, path"})
	if err != nil {
		return nil, err
	}
	rows, err := store.DirFiles(ctx, s)
	if err != nil {
		return nil, err
	}

	tree := &Tree{DirMap: make(map[uint]*TreeNode, len(dirs)), FileMap: make(map[uint]*TreeNode, len(rows))}
	byPath := make(map[string]*TreeNode, len(dirs))
	for _, d := range dirs {
		node := &TreeNode{ID: d.ID, Kind: "dir", Name: d.Name, Path: d.Path, Depth: d.Depth}
		tree.DirMap[d.ID] = node
		byPath[d.Path] = node
		if parent, ok := byPath[d.ParentPath]; ok {
			parent.Children = append(parent.Children, node)
		} else if tree.Root == nil {
			tree.Root = node
		}
	}
	for _, row := range rows {
		node := &TreeNode{ID: row.FileID, Kind: "file", Name: row.FileName, Path: row.FilePath, Size: row.FileSize, Type: row.FileType}
		tree.FileMap[row.FileID] = node
		if parent, ok := tree.DirMap[row.DirID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return tree, nil
}

// UnusedOptions configures FindUnreachable.
type UnusedOptions struct {
	// Include lists root-relative directories; candidates must lie in all of them.
	Include []string
	Strict  bool
}

// FindUnreachable reports files and runtime packages unused from entry, a
// root-relative path with optional index-file fallback.
func (e *Engine) FindUnreachable(ctx context.Context, entry string, opts UnusedOptions) (unused.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.readStore()
	if err != nil {
		return unused.Result{}, err
	}

	in, err := e.loadUnusedInput(ctx, s)
	if err != nil {
		return unused.Result{}, err
	}
	entryID, err := e.resolveEntry(entry)
	if err != nil {
		return unused.Result{}, err
	}
	in.EntryID = entryID

	return unused.FindUnreachable(in, unused.Options{Include: e.includePrefixes(opts.Include), Strict: opts.Strict}), nil
}

// FindUnreachableAll runs FindUnreachable per entry and reports only what is
// unused under every entry.
func (e *Engine) FindUnreachableAll(ctx context.Context, entries []string, opts UnusedOptions) (unused.Result, error) {
	if len(entries) == 0 {
		return unused.Result{}, fmt.Errorf("%w: no entry files given", ErrEntryNotFound)
	}
	results := make([]unused.Result, 0, len(entries))
	for _, entry := range entries {
		res, err := e.FindUnreachable(ctx, entry, opts)
		if err != nil {
			return unused.Result{}, fmt.Errorf("entry %s: %w", entry, err)
		}
		results = append(results, res)
	}
	return unused.Intersect(results...), nil
}

func (e *Engine) resolveEntry(entry string) (uint, error) {
	if strings.TrimSpace(entry) == "" {
		return 0, fmt.Errorf("%w: empty entry", ErrEntryNotFound)
	}
	p := resolve.ResolveIndexFile(e.absPath(entry), e.index.HasFile)
	id, ok := e.index.FileID(p)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}
	return id, nil
}

func (e *Engine) includePrefixes(include []string) []string {
	out := make([]string, 0, len(include))
	for _, inc := range include {
		p := e.absPath(inc)
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		out = append(out, p)
	}
	return out
}

func (e *Engine) loadUnusedInput(ctx context.Context, s *store.Store) (unused.Input, error) {
	refs, err := store.Query[store.ReferenceModel](ctx, s, store.Filter{
		Columns: []string{"file_id", "ref_id", "type"},
		In:      map[string][]any{"type": {store.RefFile, store.RefPackage}},
	})
	if err != nil {
		return unused.Input{}, err
	}
	rows, err := store.DirFiles(ctx, s)
	if err != nil {
		return unused.Input{}, err
	}
	pkgs, err := store.Query[store.PackageModel](ctx, s, store.Filter{Order: "name"})
	if err != nil {
		return unused.Input{}, err
	}

	in := unused.Input{
		Edges:    make([]unused.Edge, 0, len(refs)),
		Files:    make([]unused.File, 0, len(rows)),
		Packages: make([]unused.Package, 0, len(pkgs)),
	}
	for _, r := range refs {
		in.Edges = append(in.Edges, unused.Edge{From: r.FileID, To: r.RefID, Kind: r.Type})
	}
	for _, row := range rows {
		in.Files = append(in.Files, unused.File{ID: row.FileID, Name: row.FileName, Path: row.FilePath, Size: row.FileSize, Type: row.FileType})
	}
	for _, p := range pkgs {
		in.Packages = append(in.Packages, unused.Package{ID: p.ID, Name: p.Name, Version: p.Version, Class: p.Type})
	}
	return in, nil
}

// FileByPath looks up a scanned file by root-relative or absolute path.
func (e *Engine) FileByPath(ctx context.Context, p string) (store.FileModel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.readStore()
	if err != nil {
		return store.FileModel{}, err
	}
	files, err := store.Query[store.FileModel](ctx, s, store.Filter{Where: map[string]any{"path": e.absPath(p)}})
	if err != nil {
		return store.FileModel{}, err
	}
	if len(files) == 0 {
		return store.FileModel{}, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return files[0], nil
}

// GetRelation returns the relation tree of a file in one direction.
func (e *Engine) GetRelation(ctx context.Context, fileID uint, dir relation.Direction) (*relation.Node, error) {
	if dir != relation.Up && dir != relation.Down {
		return nil, fmt.Errorf("relation tree needs direction up or down, got %q", dir)
	}
	g, err := e.relationGraph(ctx)
	if err != nil {
		return nil, err
	}
	tree, ok := relation.GetRelation(g, fileID, dir)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrFileNotFound, fileID)
	}
	return tree, nil
}

// Flatten reduces a relation tree to unique nodes and edges.
func (e *Engine) Flatten(tree *relation.Node, dir relation.Direction) relation.Flat {
	return relation.Flatten(tree, dir)
}

// GetFlatRelation walks one or both directions and merges the results.
func (e *Engine) GetFlatRelation(ctx context.Context, fileID uint, dir relation.Direction) (relation.Flat, error) {
	g, err := e.relationGraph(ctx)
	if err != nil {
		return relation.Flat{}, err
	}
	dirs := []relation.Direction{dir}
	if dir == relation.Both {
		dirs = []relation.Direction{relation.Up, relation.Down}
	}
	flats := make([]relation.Flat, 0, len(dirs))
	for _, d := range dirs {
		tree, ok := relation.GetRelation(g, fileID, d)
		if !ok {
			return relation.Flat{}, fmt.Errorf("%w: id %d", ErrFileNotFound, fileID)
		}
		flats = append(flats, relation.Flatten(tree, d))
	}
	return relation.Merge(flats...), nil
}

// PackageRelation is every file importing a package plus their importers.
type PackageRelation struct {
	Package   store.PackageModel `json:"package"`
	Importers []uint             `json:"importers"`
	relation.Flat
}

// GetPackageRelation collects the upstream relations of every file that
// imports the named package. Importers are marked as entries.
func (e *Engine) GetPackageRelation(ctx context.Context, name string) (*PackageRelation, error) {
	e.mu.RLock()
	s, err := e.readStore()
	if err != nil {
		e.mu.RUnlock()
		return nil, err
	}
	pkgs, err := store.Query[store.PackageModel](ctx, s, store.Filter{Where: map[string]any{"name": name}})
	if err != nil {
		e.mu.RUnlock()
		return nil, err
	}
	if len(pkgs) == 0 {
		e.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	refs, err := store.Query[store.ReferenceModel](ctx, s, store.Filter{
		Where: map[string]any{"ref_id": pkgs[0].ID, "type": store.RefPackage},
	})
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	g, err := e.relationGraph(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	importers := make([]uint, 0, len(refs))
	flats := make([]relation.Flat, 0, len(refs))
	for _, r := range refs {
		if seen[r.FileID] {
			continue
		}
		seen[r.FileID] = true
		importers = append(importers, r.FileID)
		if tree, ok := relation.GetRelation(g, r.FileID, relation.Up); ok {
			flats = append(flats, relation.Flatten(tree, relation.Up))
		}
	}
	sort.Slice(importers, func(i, j int) bool { return importers[i] < importers[j] })

	return &PackageRelation{Package: pkgs[0], Importers: importers, Flat: relation.Merge(flats...)}, nil
}

func (e *Engine) relationGraph(ctx context.Context) (*relation.Graph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.readStore()
	if err != nil {
		return nil, err
	}

	files, err := store.Query[store.FileModel](ctx, s, store.Filter{})
	if err != nil {
		return nil, err
	}
	attrs, err := loadAttrs(ctx, s)
	if err != nil {
		return nil, err
	}
	refs, err := store.Query[store.ReferenceModel](ctx, s, store.Filter{
		Columns: []string{"file_id", "ref_id"},
		Where:   map[string]any{"type": store.RefFile},
		Order:   "id",
	})
	if err != nil {
		return nil, err
	}

	infos := make([]relation.Info, 0, len(files))
	for _, f := range files {
		infos = append(infos, relation.Info{ID: f.ID, Name: f.Name, Path: f.Path, Type: f.Type, Attr: attrs[f.ID]})
	}
	edges := make([]relation.Edge, 0, len(refs))
	for _, r := range refs {
		edges = append(edges, relation.Edge{From: r.FileID, To: r.RefID})
	}
	return relation.NewGraph(infos, edges), nil
}

func loadAttrs(ctx context.Context, s *store.Store) (map[uint]*relation.Attr, error) {
	rows, err := store.Query[store.AttrModel](ctx, s, store.Filter{Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make(map[uint]*relation.Attr, len(rows))
	for _, row := range rows {
		if _, ok := out[row.FileID]; ok {
			continue
		}
		out[row.FileID] = &relation.Attr{Kind: row.Type, Name: row.Name, Description: row.Description}
	}
	return out, nil
}
