package repository

import (
	"context"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var pgQB = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewPostgresRepository(db *pgxpool.Pool, log *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		log: log.Named("postgres-repo"),
	}
}

func (r *PostgresRepository) Load(ctx context.Context) (model.Catalog, error) {
	var c model.Catalog
	err := r.db.QueryRow(ctx, `select name from library_info order by id limit 1`).Scan(&c.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Catalog{}, errors.Wrap(err, "load library name")
	}

	query, args, err := pgQB.Select(append([]string{"id"}, bookColumns...)...).
		From(booksTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return model.Catalog{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Catalog{}, errors.Wrap(err, "load books")
	}
	defer rows.Close()
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		return model.Catalog{}, errors.Wrap(err, "pgx.CollectRows")
	}
	c.Books = make([]model.Book, 0, len(items))
	for _, row := range items {
		c.Books = append(c.Books, row.toBook())
	}
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c model.Catalog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsertName = `insert into library_info (id, name) values (@id, @name)
	on conflict (id) do update set name = excluded.name`
	if _, err := tx.Exec(ctx, upsertName, pgx.NamedArgs{"id": 1, "name": c.Name}); err != nil {
		return errors.Wrap(err, "save library name")
	}
	if _, err := tx.Exec(ctx, `delete from books`); err != nil {
		return errors.Wrap(err, "clear books")
	}

	books := c.Books
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{booksTableName}, bookColumns,
		pgx.CopyFromSlice(len(books), func(i int) ([]any, error) {
			return bookValues(books[i]), nil
		}),
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errors.Wrap(errs.ErrAlreadyExists, pgErr.Detail)
		}
		r.log.Error("Save", zap.Int("books", len(books)), zap.Error(err))
		return errors.Wrap(err, "copy books")
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}

func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}
