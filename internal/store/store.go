// Package store persists the scanned project graph in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Store wraps one on-disk graph database. Writes are serialized by the store
// so concurrent callers never issue overlapping transactions.
type Store struct {
	db     *gorm.DB
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// Filter narrows a Query. Where holds equality predicates, In holds
// membership predicates; all of them must hold.
type Filter struct {
	Columns []string
	Where   map[string]any
	In      map[string][]any
	Order   string
}

// Open opens (and with recreate, first deletes) the database at path and
// applies migrations.
func Open(ctx context.Context, path string, recreate bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if recreate {
		for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("remove %s: %w", p, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate store %s: %w", path, err)
	}

	logger.Debug("store opened", "path", path, "recreate", recreate)
	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Inserts writes rows one physical insert at a time inside a single
// transaction and writes the generated IDs back into rows. Any failure rolls
// back the whole batch.
func Inserts[T any](ctx context.Context, s *Store, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", tableName[T](s), err)
	}
	return nil
}

// Query selects rows of T's table matching filter.
func Query[T any](ctx context.Context, s *Store, filter Filter) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if len(filter.Columns) > 0 {
		q = q.Select(filter.Columns)
	}
	if len(filter.Where) > 0 {
		q = q.Where(filter.Where)
	}
	for column, values := range filter.In {
		q = q.Where(clause.IN{Column: clause.Column{Name: column}, Values: values})
	}
	if filter.Order != "" {
		q = q.Order(filter.Order)
	}

	rows := make([]T, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName[T](s), err)
	}
	return rows, nil
}

// Count returns the number of rows of T's table matching where.
func Count[T any](ctx context.Context, s *Store, where map[string]any) (int64, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		q = q.Where(where)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", tableName[T](s), err)
	}
	return n, nil
}

// Update sets values on every row matching where. An empty where is refused.
func Update[T any](ctx context.Context, s *Store, where map[string]any, values map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("update %s: %w", tableName[T](s), gorm.ErrMissingWhereClause)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Model(new(T)).Where(where).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update %s: %w", tableName[T](s), res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByIDs removes rows of T's table by primary key.
func DeleteByIDs[T any](ctx context.Context, s *Store, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Delete(new(T), ids)
	if res.Error != nil {
		return 0, fmt.Errorf("delete from %s: %w", tableName[T](s), res.Error)
	}
	return res.RowsAffected, nil
}

// Raw runs a read-only SQL statement and scans the result into T.
func Raw[T any](ctx context.Context, s *Store, sql string, args ...any) ([]T, error) {
	rows := make([]T, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("raw query: %w", err)
	}
	return rows, nil
}

const dirFilesSQL = `
SELECT
  d.id AS dir_id,
  d.name AS dir_name,
  d.path AS dir_path,
  d.depth AS dir_depth,
  f.id AS file_id,
  f.name AS file_name,
  f.path AS file_path,
  f.size AS file_size,
  f.type AS file_type
FROM dir_file_relation r
JOIN dir d ON d.id = r.dir_id
JOIN file f ON f.id = r.file_id
ORDER BY d.depth, d.path, f.path`

// DirFiles returns every file joined with its parent directory.
func DirFiles(ctx context.Context, s *Store) ([]DirFileRow, error) {
	return Raw[DirFileRow](ctx, s, dirFilesSQL)
}

func tableName[T any](s *Store) string {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(new(T)); err != nil || stmt.Schema == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return stmt.Schema.Table
}
