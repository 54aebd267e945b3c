package repository

import (
	"context"
	"database/sql"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var sqliteQB = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type SQLiteRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewSQLiteRepository(db *sqlx.DB, log *zap.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.Named("sqlite-repo"),
	}
}

func (r *SQLiteRepository) Load(ctx context.Context) (model.Catalog, error) {
	var c model.Catalog
	nameQ, _, err := sqliteQB.Select("name").From(libraryTableName).OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return model.Catalog{}, err
	}
	if err := r.db.GetContext(ctx, &c.Name, nameQ); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Catalog{}, errors.Wrap(err, "load library name")
	}

	query, args, err := sqliteQB.Select(append([]string{"id"}, bookColumns...)...).
		From(booksTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return model.Catalog{}, err
	}
	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.Error("Load", zap.String("q", query), zap.Error(err))
		return model.Catalog{}, errors.Wrap(err, "load books")
	}
	c.Books = make([]model.Book, 0, len(rows))
	for _, row := range rows {
		c.Books = append(c.Books, row.toBook())
	}
	return c, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, c model.Catalog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := r.saveName(ctx, tx, c.Name); err != nil {
		return err
	}

	delQ, _, err := sqliteQB.Delete(booksTableName).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, delQ); err != nil {
		return errors.Wrap(err, "clear books")
	}
	for _, b := range c.Books {
		query, args, err := sqliteQB.Insert(booksTableName).
			Columns(bookColumns...).
			Values(bookValues(b)...).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.log.Error("Save", zap.String("isbn", b.ISBN), zap.Error(err))
			return errors.Wrapf(err, "insert book %s", b.ISBN)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (r *SQLiteRepository) saveName(ctx context.Context, tx *sqlx.Tx, name string) error {
	query, args, err := sqliteQB.Insert(libraryTableName).
		Columns("id", "name").
		Values(1, name).
		Suffix("ON CONFLICT(id) DO UPDATE SET name = excluded.name").
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return errors.Wrap(err, "save library name")
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
