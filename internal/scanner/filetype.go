package scanner

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// FileType is the coarse classification stored for every scanned file.
type FileType string

const (
	FileTypeJS     FileType = "js"
	FileTypeTS     FileType = "ts"
	FileTypeOthers FileType = "others"
)

// IsSource reports whether the type takes part in reference analysis.
func (t FileType) IsSource() bool {
	return t == FileTypeJS || t == FileTypeTS
}

// IsSourceFile reports whether name is an importable JS/TS source file.
// Declaration files never count, even when another suffix follows ".d.ts".
// Suffix checks are case-sensitive.
func IsSourceFile(name string) bool {
	name = path.Base(name)
	if strings.Contains(name, ".d.ts") {
		return false
	}
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// FileTypeOf classifies a file purely from its name.
func FileTypeOf(name string) FileType {
	if !IsSourceFile(name) {
		return FileTypeOthers
	}
	if strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".tsx") {
		return FileTypeTS
	}
	return FileTypeJS
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count with a binary unit, e.g. "1.5 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(roundTo(value, 2), 'f', -1, 64), sizeUnits[unit])
}

func roundTo(value float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(value*scale+0.5)) / scale
}
