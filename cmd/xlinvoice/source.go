package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/config"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
)

// newSource builds the template source described by cfg. The returned
// close function releases any database handle.
func newSource(cfg config.Templates) (template.Source, func() error, error) {
	var (
		src     template.Source
		closeFn = func() error { return nil }
	)

	switch cfg.Driver {
	case "":
		src = template.NewDirSource(cfg.Dir)
	case "sqlite3", "postgres":
		db, err := sql.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open template database: %w", err)
		}
		sqlSrc, err := template.NewSQLSource(db, cfg.Table)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		src = sqlSrc
		closeFn = db.Close
	default:
		return nil, nil, fmt.Errorf("unsupported templates.driver %q", cfg.Driver)
	}

	if cfg.Cache {
		src = template.NewCachedSource(src)
	}
	return src, closeFn, nil
}
