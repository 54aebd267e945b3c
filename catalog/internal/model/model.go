package model

import (
	"fmt"
	"strconv"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
)

// Kind is the discriminator tag stored with every book.
type Kind string

const (
	KindBook      Kind = "Book"
	KindEBook     Kind = "EBook"
	KindAudioBook Kind = "AudioBook"
)

// ParseKind maps unknown or empty tags to KindBook.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindEBook:
		return KindEBook
	case KindAudioBook:
		return KindAudioBook
	default:
		return KindBook
	}
}

// Book is one catalog item. Variant fields are meaningful only for their Kind.
type Book struct {
	Title    string
	Author   string
	ISBN     string
	Borrowed bool
	Kind     Kind

	// EBook
	FileFormat string
	FileSizeMB float64
	// AudioBook
	DurationMinutes int
}

func NewBook(title, author, isbn string) Book {
	return Book{Title: title, Author: author, ISBN: isbn, Kind: KindBook}
}

func NewEBook(title, author, isbn, format string, sizeMB float64) Book {
	return Book{Title: title, Author: author, ISBN: isbn, Kind: KindEBook, FileFormat: format, FileSizeMB: sizeMB}
}

func NewAudioBook(title, author, isbn string, minutes int) Book {
	return Book{Title: title, Author: author, ISBN: isbn, Kind: KindAudioBook, DurationMinutes: minutes}
}

func (b *Book) Borrow() error {
	if b.Borrowed {
		return fmt.Errorf("%q: %w", b.Title, errs.ErrAlreadyBorrowed)
	}
	b.Borrowed = true
	return nil
}

func (b *Book) Return() error {
	if !b.Borrowed {
		return fmt.Errorf("%q: %w", b.Title, errs.ErrNotBorrowed)
	}
	b.Borrowed = false
	return nil
}

func (b Book) Display() string {
	base := fmt.Sprintf("%s by %s (ISBN: %s)", b.Title, b.Author, b.ISBN)
	switch b.Kind {
	case KindEBook:
		return fmt.Sprintf("%s - Format: %s - Size: %sMB", base, b.FileFormat, strconv.FormatFloat(b.FileSizeMB, 'f', -1, 64))
	case KindAudioBook:
		return fmt.Sprintf("%s - Duration: %d minutes", base, b.DurationMinutes)
	default:
		return base
	}
}

func (b Book) String() string {
	return b.Display()
}

// Catalog is the persisted snapshot: library name plus books in insertion order.
type Catalog struct {
	Name  string
	Books []Book
}

type Stats struct {
	LibraryName string `json:"libraryName"`
	Total       int    `json:"total"`
	Available   int    `json:"available"`
	Borrowed    int    `json:"borrowed"`
}

// Metadata is the normalized result of an external ISBN lookup.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}
