package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
)

// Source supplies the original template bytes of a variant. Returned slices
// must be treated as read-only by callers.
type Source interface {
	Load(ctx context.Context, v Variant) ([]byte, error)
}

func notFound(v Variant, err error) error {
	if err == nil {
		return errs.Errorf(errs.ErrTemplateNotFound, "template.load", "variant %q", v)
	}
	return errs.New(errs.ErrTemplateNotFound, "template.load", fmt.Errorf("variant %q: %w", v, err))
}

// MemorySource serves templates from a map.
type MemorySource map[Variant][]byte

// Load implements Source.
func (m MemorySource) Load(ctx context.Context, v Variant) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m[v]
	if !ok || len(data) == 0 {
		return nil, notFound(v, nil)
	}
	return data, nil
}

// DirSource reads <Dir>/<variant>.xlsx from disk on every call.
type DirSource struct {
	Dir string
}

// NewDirSource creates a new directory-backed source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Path returns the file path of a variant's template.
func (s *DirSource) Path(v Variant) string {
	return filepath.Join(s.Dir, string(v)+".xlsx")
}

// Load implements Source.
func (s *DirSource) Load(ctx context.Context, v Variant) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(v))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(v, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", s.Path(v), err)
	}
	return data, nil
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads templates from a table with variant and content columns.
// The query uses $1 placeholders, accepted by both lib/pq and go-sqlite3.
type SQLSource struct {
	db    *sql.DB
	query string
}

// NewSQLSource creates a source over db reading from table.
func NewSQLSource(db *sql.DB, table string) (*SQLSource, error) {
	if table == "" {
		table = "templates"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid template table name %q", table)
	}
	return &SQLSource{
		db:    db,
		query: "SELECT content FROM " + table + " WHERE variant = $1",
	}, nil
}

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context, v Variant) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.query, string(v)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(v, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("query template %q: %w", v, err)
	}
	if len(data) == 0 {
		return nil, notFound(v, nil)
	}
	return data, nil
}

// CachedSource memoizes the bytes of each variant. It is safe for
// concurrent use; cached slices are shared and never written.
type CachedSource struct {
	src   Source
	mu    sync.RWMutex
	cache map[Variant][]byte
}

// NewCachedSource wraps src with an immutable per-variant cache.
func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{src: src, cache: make(map[Variant][]byte)}
}

// Load implements Source. Failures are not cached.
func (c *CachedSource) Load(ctx context.Context, v Variant) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.cache[v]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := c.src.Load(ctx, v)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.cache[v]; ok {
		data = cached
	} else {
		c.cache[v] = data
	}
	c.mu.Unlock()
	return data, nil
}

// Invalidate drops all cached templates.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[Variant][]byte)
	c.mu.Unlock()
}
