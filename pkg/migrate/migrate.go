package migrate

import (
	"database/sql"
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// goose keeps dialect and base FS in package globals.
var mu sync.Mutex

// Up applies every pending migration found at the root of fsys.
func Up(db *sql.DB, dialect string, fsys fs.FS, log *zap.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if log != nil {
		goose.SetLogger(gooseLogger{log.Named("goose").Sugar()})
	}
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.Up(db, "."); err != nil {
		return errors.Wrap(err, "goose.Up")
	}
	return nil
}

type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Fatal(v ...interface{})                 { l.s.Fatal(v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
func (l gooseLogger) Print(v ...interface{})                 { l.s.Debug(v...) }
func (l gooseLogger) Println(v ...interface{})               { l.s.Debug(v...) }
func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Debugf(format, v...) }
