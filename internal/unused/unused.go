// Package unused finds files and runtime packages that are not reachable from
// an entry file.
package unused

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/morozRed/fura/internal/scanner"
	"github.com/morozRed/fura/internal/store"
)

// Edge is a reference edge as loaded from the store.
type Edge struct {
	From uint
	To   uint
	Kind string
}

// File is a candidate file row.
type File struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Package is a declared dependency.
type Package struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Class   string `json:"type"`
}

// Input is a read-only snapshot of the graph.
type Input struct {
	Edges    []Edge
	Files    []File
	Packages []Package
	EntryID  uint
}

// Options restrict the analysis.
type Options struct {
	// Include lists absolute path prefixes. A candidate must match all of them.
	Include []string
	// Strict reports every candidate not reachable from the entry by forward
	// traversal, including import cycles nothing else reaches.
	Strict bool
}

// Result lists unused files and unused runtime packages, ordered by path and
// name.
type Result struct {
	Files    []File    `json:"files"`
	Packages []Package `json:"packages"`
}

// FindUnreachable runs the pruning analysis for one entry. The entry is never
// reported. A file stays used while another used file imports it; removal
// repeats until nothing changes.
func FindUnreachable(in Input, opts Options) Result {
	candidates := make([]File, 0, len(in.Files))
	for _, f := range in.Files {
		if f.ID == in.EntryID || isCandidate(f, opts.Include) {
			candidates = append(candidates, f)
		}
	}

	var used *roaring.Bitmap
	if opts.Strict {
		used = reachable(in, candidates)
	} else {
		used = prune(in, candidates)
	}

	res := Result{Files: make([]File, 0), Packages: make([]Package, 0)}
	for _, f := range candidates {
		if !used.Contains(uint32(f.ID)) {
			res.Files = append(res.Files, f)
		}
	}

	importedBy := make(map[uint]bool)
	for _, e := range in.Edges {
		if e.Kind == store.RefPackage && used.Contains(uint32(e.From)) {
			importedBy[e.To] = true
		}
	}
	for _, p := range in.Packages {
		if p.Class == string(scanner.PackageRuntime) && !importedBy[p.ID] {
			res.Packages = append(res.Packages, p)
		}
	}

	sortResult(&res)
	return res
}

func isCandidate(f File, include []string) bool {
	if !scanner.FileType(f.Type).IsSource() {
		return false
	}
	for _, prefix := range include {
		if !strings.HasPrefix(f.Path, prefix) {
			return false
		}
	}
	return true
}

// prune seeds the used set with every candidate and drops files whose inbound
// edges all come from dropped files (or themselves) until a fixed point.
func prune(in Input, candidates []File) *roaring.Bitmap {
	used := roaring.New()
	for _, f := range candidates {
		used.Add(uint32(f.ID))
	}

	outgoing := make(map[uint][]uint)
	inbound := make(map[uint]int)
	for _, e := range in.Edges {
		if e.Kind != store.RefFile || e.From == e.To {
			continue
		}
		if !used.Contains(uint32(e.From)) || !used.Contains(uint32(e.To)) {
			continue
		}
		outgoing[e.From] = append(outgoing[e.From], e.To)
		inbound[e.To]++
	}

	queue := make([]uint, 0)
	for _, f := range candidates {
		if f.ID != in.EntryID && inbound[f.ID] == 0 {
			queue = append(queue, f.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !used.CheckedRemove(uint32(id)) {
			continue
		}
		for _, to := range outgoing[id] {
			inbound[to]--
			if inbound[to] == 0 && to != in.EntryID {
				queue = append(queue, to)
			}
		}
	}
	return used
}

// reachable marks candidates reachable from the entry along file edges.
func reachable(in Input, candidates []File) *roaring.Bitmap {
	allowed := roaring.New()
	for _, f := range candidates {
		allowed.Add(uint32(f.ID))
	}

	outgoing := make(map[uint][]uint)
	for _, e := range in.Edges {
		if e.Kind == store.RefFile {
			outgoing[e.From] = append(outgoing[e.From], e.To)
		}
	}

	used := roaring.New()
	if !allowed.Contains(uint32(in.EntryID)) {
		return used
	}
	used.Add(uint32(in.EntryID))
	queue := []uint{in.EntryID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range outgoing[id] {
			if allowed.Contains(uint32(to)) && used.CheckedAdd(uint32(to)) {
				queue = append(queue, to)
			}
		}
	}
	return used
}

// Intersect keeps only the files and packages reported by every result.
func Intersect(results ...Result) Result {
	if len(results) == 0 {
		return Result{Files: make([]File, 0), Packages: make([]Package, 0)}
	}

	files := roaring.New()
	pkgs := roaring.New()
	for _, f := range results[0].Files {
		files.Add(uint32(f.ID))
	}
	for _, p := range results[0].Packages {
		pkgs.Add(uint32(p.ID))
	}
	for _, r := range results[1:] {
		nextFiles := roaring.New()
		for _, f := range r.Files {
			nextFiles.Add(uint32(f.ID))
		}
		nextPkgs := roaring.New()
		for _, p := range r.Packages {
			nextPkgs.Add(uint32(p.ID))
		}
		files.And(nextFiles)
		pkgs.And(nextPkgs)
	}

	out := Result{Files: make([]File, 0), Packages: make([]Package, 0)}
	for _, f := range results[0].Files {
		if files.Contains(uint32(f.ID)) {
			out.Files = append(out.Files, f)
		}
	}
	for _, p := range results[0].Packages {
		if pkgs.Contains(uint32(p.ID)) {
			out.Packages = append(out.Packages, p)
		}
	}
	return out
}

// TotalSize sums the size of the unused files.
func (r Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

func sortResult(r *Result) {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.Slice(r.Packages, func(i, j int) bool { return r.Packages[i].Name < r.Packages[j].Name })
}
