package sqlite

import (
	"context"
	"io/fs"

	"github.com/Astemirdum/book-catalog/pkg/migrate"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const driverName = "sqlite3"

// NewSQLiteDB opens (creating if needed) the database file at path and migrates it.
func NewSQLiteDB(ctx context.Context, path string, migrations fs.FS, log *zap.Logger) (*sqlx.DB, error) {
	dsn := "file:" + path + "?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite open %s", path)
	}
	// one writer; keeps ":memory:" databases on a single connection too
	db.SetMaxOpenConns(1)

	if err := migrate.Up(db.DB, driverName, migrations, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
