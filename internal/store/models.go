package store

// DirModel is one scanned directory.
type DirModel struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Path       string `gorm:"uniqueIndex;not null"`
	ParentPath string `gorm:"not null"`
	Depth      int    `gorm:"not null"`
}

func (DirModel) TableName() string { return "dir" }

// FileModel is one scanned file. Type is js, ts or others.
type FileModel struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Path       string `gorm:"uniqueIndex;not null"`
	ParentPath string `gorm:"not null"`
	Size       int64  `gorm:"not null"`
	Type       string `gorm:"not null"`
}

func (FileModel) TableName() string { return "file" }

// DirFileModel links a file to its immediate parent directory.
type DirFileModel struct {
	ID     uint `gorm:"primaryKey"`
	DirID  uint `gorm:"not null;index"`
	FileID uint `gorm:"not null;index"`
}

func (DirFileModel) TableName() string { return "dir_file_relation" }

// PackageModel is a dependency declared in the root package manifest.
type PackageModel struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"uniqueIndex;not null"`
	Version string `gorm:"not null"`
	Type    string `gorm:"not null"`
}

func (PackageModel) TableName() string { return "npm_pkg" }

// Reference target kinds.
const (
	RefFile    = "file"
	RefPackage = "package"
	RefUnknown = "unknown"
)

// ReferenceModel is a directed edge from the importing file. RefID is a file
// or package id, or 0 for unknown targets, which keep the unresolved path in
// Remark.
type ReferenceModel struct {
	ID     uint    `gorm:"primaryKey"`
	FileID uint    `gorm:"not null;index"`
	RefID  uint    `gorm:"not null;index"`
	Type   string  `gorm:"not null"`
	Remark *string `gorm:"default:null"`
}

func (ReferenceModel) TableName() string { return "file_reference" }

// AttrModel is the documented identity of a file.
type AttrModel struct {
	ID          uint   `gorm:"primaryKey"`
	FileID      uint   `gorm:"not null;index"`
	Type        string `gorm:"not null"`
	Name        string `gorm:"not null"`
	Description string `gorm:"not null"`
}

func (AttrModel) TableName() string { return "file_attr" }

// DirFileRow is one row of the directory/file join.
type DirFileRow struct {
	DirID    uint   `gorm:"column:dir_id"`
	DirName  string `gorm:"column:dir_name"`
	DirPath  string `gorm:"column:dir_path"`
	DirDepth int    `gorm:"column:dir_depth"`
	FileID   uint   `gorm:"column:file_id"`
	FileName string `gorm:"column:file_name"`
	FilePath string `gorm:"column:file_path"`
	FileSize int64  `gorm:"column:file_size"`
	FileType string `gorm:"column:file_type"`
}
