// Package graph turns translated imports into persisted reference edges.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/morozRed/fura/internal/parser"
	"github.com/morozRed/fura/internal/resolve"
	"github.com/morozRed/fura/internal/scanner"
	"github.com/morozRed/fura/internal/store"
	"golang.org/x/sync/errgroup"
)

// Builder resolves every source file's imports and writes reference edges and
// file attributes to the store.
type Builder struct {
	Store       *store.Store
	Registry    *parser.Registry
	Options     parser.Options
	Concurrency int
	Logger      *slog.Logger

	// OnFile, when set, is called after each source file is processed.
	// Calls are serialized.
	OnFile func(path string, done int)
}

// Stats summarizes one Build.
type Stats struct {
	SourceFiles int                 `json:"sourceFiles"`
	Edges       map[string]int      `json:"edges"`
	Attributes  int                 `json:"attributes"`
	Issues      []parser.ParseIssue `json:"issues"`
}

type fileResult struct {
	refs  []store.ReferenceModel
	attr  *store.AttrModel
	issue *parser.ParseIssue
}

// Build processes the source files among files concurrently. Translation
// failures are recorded as issues and leave the file without edges; store
// failures abort the build.
func (b *Builder) Build(ctx context.Context, idx *Index, files []store.FileModel) (*Stats, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := b.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	stats := &Stats{
		Edges:  map[string]int{store.RefFile: 0, store.RefPackage: 0, store.RefUnknown: 0},
		Issues: make([]parser.ParseIssue, 0),
	}
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		if !scanner.FileType(file.Type).IsSource() {
			continue
		}
		stats.SourceFiles++

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := b.resolveFile(idx, file)
			if res.issue != nil {
				if res.issue.Severity == "error" {
					logger.Warn("failed to translate file", "path", file.Path, "error", res.issue.Message)
				} else {
					logger.Debug("file has syntax errors", "path", file.Path)
				}
			}

			if err := store.Inserts(gctx, b.Store, res.refs); err != nil {
				return fmt.Errorf("write references for %s: %w", file.Path, err)
			}
			if res.attr != nil {
				if err := store.Inserts(gctx, b.Store, []store.AttrModel{*res.attr}); err != nil {
					return fmt.Errorf("write attribute for %s: %w", file.Path, err)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			for _, ref := range res.refs {
				stats.Edges[ref.Type]++
			}
			if res.attr != nil {
				stats.Attributes++
			}
			if res.issue != nil {
				stats.Issues = append(stats.Issues, *res.issue)
			}
			done++
			if b.OnFile != nil {
				b.OnFile(file.Path, done)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(stats.Issues, func(i, j int) bool {
		if stats.Issues[i].File == stats.Issues[j].File {
			return stats.Issues[i].Message < stats.Issues[j].Message
		}
		return stats.Issues[i].File < stats.Issues[j].File
	})
	return stats, nil
}

func (b *Builder) resolveFile(idx *Index, file store.FileModel) fileResult {
	translation, err := b.Registry.TranslateFile(file.Path, b.Options)
	if err != nil {
		return fileResult{issue: &parser.ParseIssue{
			File:     file.Path,
			Severity: "error",
			Message:  err.Error(),
		}}
	}
	if translation == nil {
		return fileResult{}
	}

	res := fileResult{refs: make([]store.ReferenceModel, 0, len(translation.Imports))}
	if translation.HasSyntaxErrors {
		res.issue = &parser.ParseIssue{
			File:     file.Path,
			Language: translation.Language,
			Severity: "warning",
			Message:  "source contains syntax errors; imports may be incomplete",
		}
	}

	for _, imp := range translation.Imports {
		target := idx.Lookup(ResolveSpecifier(idx, imp.Source, file.ParentPath))
		ref := store.ReferenceModel{FileID: file.ID, RefID: target.ID, Type: target.Kind}
		if target.Remark != "" {
			remark := target.Remark
			ref.Remark = &remark
		}
		res.refs = append(res.refs, ref)
	}

	if doc := translation.Documentation; doc != nil {
		res.attr = &store.AttrModel{
			FileID:      file.ID,
			Type:        string(doc.Kind),
			Name:        doc.Name,
			Description: doc.Description,
		}
	}
	return res
}

// ResolveSpecifier joins relative specifiers onto parentDir and, for paths
// under the scan root, applies index-file fallback.
func ResolveSpecifier(idx *Index, specifier, parentDir string) string {
	p := resolve.JoinRelative(specifier, parentDir)
	if idx.Contains(p) {
		p = resolve.ResolveIndexFile(p, idx.HasFile)
	}
	return p
}
