package repository

import (
	"context"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
)

// Repository stores whole catalog snapshots. Save replaces everything previously stored.
type Repository interface {
	Load(ctx context.Context) (model.Catalog, error)
	Save(ctx context.Context, c model.Catalog) error
	Close() error
}

const (
	libraryTableName = `library_info`
	booksTableName   = `books`
)

var bookColumns = []string{
	"title", "author", "isbn", "is_borrowed", "book_type", "file_format", "file_size", "duration_minutes",
}

func cloneCatalog(c model.Catalog) model.Catalog {
	books := make([]model.Book, len(c.Books))
	copy(books, c.Books)
	return model.Catalog{Name: c.Name, Books: books}
}
