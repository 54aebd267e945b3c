package repository

import (
	"database/sql"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
)

// bookRow mirrors the books table shared by the sqlite and postgres schemas.
type bookRow struct {
	ID              int64           `db:"id"`
	Title           string          `db:"title"`
	Author          string          `db:"author"`
	ISBN            string          `db:"isbn"`
	IsBorrowed      bool            `db:"is_borrowed"`
	BookType        string          `db:"book_type"`
	FileFormat      sql.NullString  `db:"file_format"`
	FileSize        sql.NullFloat64 `db:"file_size"`
	DurationMinutes sql.NullInt64   `db:"duration_minutes"`
}

func (r bookRow) toBook() model.Book {
	b := model.Book{
		Title:    r.Title,
		Author:   r.Author,
		ISBN:     r.ISBN,
		Borrowed: r.IsBorrowed,
		Kind:     model.ParseKind(r.BookType),
	}
	switch b.Kind {
	case model.KindEBook:
		b.FileFormat = r.FileFormat.String
		b.FileSizeMB = r.FileSize.Float64
	case model.KindAudioBook:
		b.DurationMinutes = int(r.DurationMinutes.Int64)
	}
	return b
}

// bookValues returns the insert values in bookColumns order; variant columns
// that do not apply to the kind are NULL.
func bookValues(b model.Book) []any {
	var (
		format  any
		size    any
		minutes any
		kind    = b.Kind
	)
	switch b.Kind {
	case model.KindEBook:
		format, size = b.FileFormat, b.FileSizeMB
	case model.KindAudioBook:
		minutes = b.DurationMinutes
	default:
		kind = model.KindBook
	}
	return []any{b.Title, b.Author, b.ISBN, b.Borrowed, string(kind), format, size, minutes}
}
