// Package engine ties scanning, graph building and the graph queries together
// for one project root.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/morozRed/fura/internal/config"
	"github.com/morozRed/fura/internal/graph"
	"github.com/morozRed/fura/internal/languages"
	"github.com/morozRed/fura/internal/parser"
	"github.com/morozRed/fura/internal/resolve"
	"github.com/morozRed/fura/internal/scanner"
	"github.com/morozRed/fura/internal/store"
)

var (
	// ErrNotAnalyzed is returned by queries issued before a base scan completed.
	ErrNotAnalyzed = errors.New("project not yet analyzed")
	// ErrEntryNotFound is returned when an entry path names no scanned file.
	ErrEntryNotFound = errors.New("entry file not found")
	// ErrFileNotFound is returned for unknown file ids or paths.
	ErrFileNotFound = errors.New("file not found")
	// ErrPackageNotFound is returned for names missing from the manifest.
	ErrPackageNotFound = errors.New("package not found")
)

// CacheDirName holds the store files under the project root.
const CacheDirName = ".fura"

// Config configures an Engine.
type Config struct {
	Root        string
	Project     string
	CacheDir    string // defaults to <Root>/.fura
	Alias       map[string]string
	Exclude     []string
	Concurrency int
	Logger      *slog.Logger
	Registry    *parser.Registry

	// OnProgress, when set, is called after each source file is translated.
	OnProgress func(path string, done, total int)
}

// Summary describes the last completed analysis.
type Summary struct {
	Root        string              `json:"root"`
	Store       string              `json:"store"`
	Directories int                 `json:"directories"`
	Files       int                 `json:"files"`
	SourceFiles int                 `json:"sourceFiles"`
	Packages    int                 `json:"packages"`
	Edges       map[string]int      `json:"edges"`
	Attributes  int                 `json:"attributes"`
	Issues      []parser.ParseIssue `json:"issues"`
	Duration    time.Duration       `json:"durationNs"`
}

// Engine owns the graph store of one project. Queries may run concurrently;
// Analysis excludes them while it rebuilds the store.
type Engine struct {
	cfg     Config
	root    string
	aliases *resolve.AliasTable
	logger  *slog.Logger

	mu      sync.RWMutex
	store   *store.Store
	index   *graph.Index
	files   []store.FileModel
	ready   bool
	summary *Summary
}

// New validates cfg and prepares an engine. Nothing is scanned until
// Analysis or InitBaseData runs.
func New(cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("%w: root is required", config.ErrInvalidConfig)
	}
	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: root %s: %v", config.ErrInvalidConfig, absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root %s is not a directory", config.ErrInvalidConfig, absRoot)
	}

	if cfg.Project == "" {
		cfg.Project = config.DefaultProject
	}
	check := config.Config{Project: cfg.Project, Alias: cfg.Alias, Concurrency: cfg.Concurrency}
	if err := check.Validate(); err != nil {
		return nil, err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(absRoot, CacheDirName)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = languages.NewDefaultRegistry()
	}

	root := filepath.ToSlash(absRoot)
	return &Engine{
		cfg:     cfg,
		root:    root,
		aliases: resolve.NewAliasTable(resolve.AbsoluteAliases(root, cfg.Alias)),
		logger:  cfg.Logger.With("project", cfg.Project),
	}, nil
}

// Root returns the absolute, slash separated project root.
func (e *Engine) Root() string {
	return e.root
}

// StorePath is the database file backing this engine.
func (e *Engine) StorePath() string {
	return filepath.Join(e.cfg.CacheDir, e.cfg.Project+".db")
}

// Analysis rescans the project into a freshly recreated store and builds all
// reference edges. On failure the engine is left not analyzed.
func (e *Engine) Analysis(ctx context.Context) (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	summary, err := e.initBaseData(ctx)
	if err != nil {
		return nil, err
	}

	phase := time.Now()
	sourceFiles := 0
	for _, f := range e.files {
		if scanner.FileType(f.Type).IsSource() {
			sourceFiles++
		}
	}
	builder := &graph.Builder{
		Store:       e.store,
		Registry:    e.cfg.Registry,
		Options:     parser.Options{Aliases: e.aliases},
		Concurrency: e.cfg.Concurrency,
		Logger:      e.logger,
	}
	if e.cfg.OnProgress != nil {
		builder.OnFile = func(path string, done int) {
			e.cfg.OnProgress(path, done, sourceFiles)
		}
	}
	stats, err := builder.Build(ctx, e.index, e.files)
	if err != nil {
		e.ready = false
		return nil, fmt.Errorf("build references: %w", err)
	}
	e.logger.Info("build references", "duration", time.Since(phase), "files", stats.SourceFiles, "aliases", e.aliases.Len(), "issues", len(stats.Issues))

	summary.Edges = stats.Edges
	summary.Attributes = stats.Attributes
	summary.Issues = append(summary.Issues, stats.Issues...)
	summary.Duration = time.Since(start)
	e.summary = summary
	e.ready = true
	return summary, nil
}

// InitBaseData scans the project and stores directories, files and packages
// without building references. Queries are allowed afterwards and see a graph
// without edges.
func (e *Engine) InitBaseData(ctx context.Context) (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	summary, err := e.initBaseData(ctx)
	if err != nil {
		return nil, err
	}
	e.summary = summary
	e.ready = true
	return summary, nil
}

func (e *Engine) initBaseData(ctx context.Context) (*Summary, error) {
	e.ready = false
	e.index = nil
	e.files = nil
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("failed to close previous store", "error", err)
		}
		e.store = nil
	}

	phase := time.Now()
	snap, err := scanner.Scan(e.root, e.cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	e.logger.Info("scan", "duration", time.Since(phase), "dirs", len(snap.Directories), "files", len(snap.Files))

	phase = time.Now()
	s, err := store.Open(ctx, e.StorePath(), true, e.logger)
	if err != nil {
		return nil, err
	}

	dirs, files, pkgs, err := insertBaseData(ctx, s, snap)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("insert base data: %w", err)
	}
	e.logger.Info("insert base data", "duration", time.Since(phase))

	e.store = s
	e.files = files
	e.index = graph.NewIndex(snap.Root, dirs, files, pkgs)

	return &Summary{
		Root:        snap.Root,
		Store:       s.Path(),
		Directories: len(dirs),
		Files:       len(files),
		SourceFiles: len(snap.SourceFiles()),
		Packages:    len(pkgs),
		Edges:       map[string]int{},
		Issues:      append([]parser.ParseIssue(nil), snap.Issues...),
	}, nil
}

func insertBaseData(ctx context.Context, s *store.Store, snap *scanner.Snapshot) ([]store.DirModel, []store.FileModel, []store.PackageModel, error) {
	dirs := make([]store.DirModel, 0, len(snap.Directories))
	for _, d := range snap.Directories {
		dirs = append(dirs, store.DirModel{Name: d.Name, Path: d.Path, ParentPath: d.ParentPath, Depth: d.Depth})
	}
	if err := store.Inserts(ctx, s, dirs); err != nil {
		return nil, nil, nil, err
	}

	files := make([]store.FileModel, 0, len(snap.Files))
	for _, f := range snap.Files {
		files = append(files, store.FileModel{Name: f.Name, Path: f.Path, ParentPath: f.ParentPath, Size: f.Size, Type: string(f.Type)})
	}
	if err := store.Inserts(ctx, s, files); err != nil {
		return nil, nil, nil, err
	}

	dirIDs := make(map[string]uint, len(dirs))
	for _, d := range dirs {
		dirIDs[d.Path] = d.ID
	}
	membership := make([]store.DirFileModel, 0, len(files))
	for _, f := range files {
		dirID, ok := dirIDs[f.ParentPath]
		if !ok {
			return nil, nil, nil, fmt.Errorf("file %s has no scanned parent directory", f.Path)
		}
		membership = append(membership, store.DirFileModel{DirID: dirID, FileID: f.ID})
	}
	if err := store.Inserts(ctx, s, membership); err != nil {
		return nil, nil, nil, err
	}

	pkgs := make([]store.PackageModel, 0, len(snap.Packages))
	for _, p := range snap.Packages {
		pkgs = append(pkgs, store.PackageModel{Name: p.Name, Version: p.Version, Type: string(p.Class)})
	}
	if err := store.Inserts(ctx, s, pkgs); err != nil {
		return nil, nil, nil, err
	}
	return dirs, files, pkgs, nil
}

// Summary returns the result of the last completed analysis.
func (e *Engine) Summary() (*Summary, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.ready {
		return nil, ErrNotAnalyzed
	}
	return e.summary, nil
}

// Close releases the store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}

// readStore returns the store for a query, or ErrNotAnalyzed. Callers must
// hold e.mu for reading.
func (e *Engine) readStore() (*store.Store, error) {
	if !e.ready || e.store == nil {
		return nil, ErrNotAnalyzed
	}
	return e.store, nil
}

// absPath resolves a root-relative (or absolute) path to the canonical form
// used in the store.
func (e *Engine) absPath(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(e.root, p)
}
