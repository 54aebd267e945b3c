// Package menu is the numbered line-oriented front end over the catalog.
package menu

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/pkg/display"
	"github.com/Astemirdum/book-catalog/pkg/validate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Catalog interface {
	Name() string
	Count() int
	List() []model.Book
	Stats() model.Stats
	Find(title, author, isbn string) (model.Book, bool)
	Add(ctx context.Context, book model.Book) error
	AddByISBN(ctx context.Context, isbn string) (model.Book, error)
	Remove(ctx context.Context, isbn string) (model.Book, error)
	Borrow(ctx context.Context, isbn string) (model.Book, error)
	Return(ctx context.Context, isbn string) (model.Book, error)
}

type Menu struct {
	catalog   Catalog
	in        *bufio.Scanner
	display   *display.Display
	validator *validate.CustomValidator
	log       *zap.Logger
}

func New(catalog Catalog, in io.Reader, d *display.Display, v *validate.CustomValidator, log *zap.Logger) *Menu {
	if v == nil {
		v = validate.NewCustomValidator()
	}
	return &Menu{
		catalog:   catalog,
		in:        bufio.NewScanner(in),
		display:   d,
		validator: v,
		log:       log.Named("menu"),
	}
}

type action struct {
	label string
	run   func(m *Menu, ctx context.Context) error
}

var actions = []action{
	{"Add book", (*Menu).addBook},
	{"Add book by ISBN", (*Menu).addByISBN},
	{"Remove book", (*Menu).removeBook},
	{"List books", (*Menu).listBooks},
	{"Find book", (*Menu).findBook},
	{"Borrow book", (*Menu).borrowBook},
	{"Return book", (*Menu).returnBook},
	{"Statistics", (*Menu).stats},
}

// Run reads choices until exit, end of input or ctx cancellation.
// Action failures are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, err := m.ask("Choice (1-%d): ", len(actions)+1)
		if err != nil {
			m.exit()
			return nil
		}
		n, convErr := strconv.Atoi(choice)
		switch {
		case convErr == nil && n == len(actions)+1:
			m.exit()
			return nil
		case convErr == nil && n >= 1 && n <= len(actions):
			if err := actions[n-1].run(m, ctx); err != nil {
				if errors.Is(err, io.EOF) {
					m.exit()
					return nil
				}
				m.log.Debug("action failed", zap.Int("choice", n), zap.Error(err))
				m.display.Error("%v", err)
			}
		default:
			m.display.Error("invalid choice %q", choice)
		}
	}
}

func (m *Menu) printMenu() {
	m.display.Println("")
	m.display.Println("=== %s ===", m.catalog.Name())
	for i, a := range actions {
		m.display.Println("%d. %s", i+1, a.label)
	}
	m.display.Println("%d. Exit", len(actions)+1)
}

func (m *Menu) exit() {
	m.display.Println("")
	m.display.Info("Goodbye! %d books registered.", m.catalog.Count())
}

// ask returns the trimmed next line, or io.EOF when input is exhausted.
func (m *Menu) ask(format string, a ...any) (string, error) {
	m.display.Prompt(format, a...)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) addBook(ctx context.Context) error {
	var (
		req model.CreateBookRequest
		err error
	)
	if req.Title, err = m.ask("Title: "); err != nil {
		return err
	}
	if req.Author, err = m.ask("Author: "); err != nil {
		return err
	}
	if req.ISBN, err = m.ask("ISBN: "); err != nil {
		return err
	}
	cfg := m.validator.Config()
	year, err := m.ask("Publication year (%d-%d): ", cfg.YearMin+1, cfg.YearMax)
	if err != nil {
		return err
	}
	// unparsable input stays zero and is rejected by validation
	req.PublicationYear, _ = strconv.Atoi(year)

	kind, err := m.ask("Type [Book/EBook/AudioBook] (Book): ")
	if err != nil {
		return err
	}
	req.Type = parseKindInput(kind)
	switch req.Type {
	case model.KindEBook:
		if req.FileFormat, err = m.ask("File format: "); err != nil {
			return err
		}
		size, err := m.ask("File size (MB): ")
		if err != nil {
			return err
		}
		req.FileSizeMB, _ = strconv.ParseFloat(size, 64)
	case model.KindAudioBook:
		minutes, err := m.ask("Duration (minutes): ")
		if err != nil {
			return err
		}
		req.DurationMinutes, _ = strconv.Atoi(minutes)
	}

	if err := m.validator.Validate(&req); err != nil {
		m.reportValidation(err)
		return nil
	}
	book := req.ToBook()
	if err := m.catalog.Add(ctx, book); err != nil {
		return err
	}
	m.display.Success("added: %s", book.Display())
	return nil
}

func (m *Menu) reportValidation(err error) {
	fields := m.validator.FieldErrors(err)
	if fields == nil {
		m.display.Error("validation failed: %v", err)
		return
	}
	var (
		order   []string
		grouped = make(map[string][]string)
	)
	for _, f := range fields {
		if _, ok := grouped[f.Field]; !ok {
			order = append(order, f.Field)
		}
		grouped[f.Field] = append(grouped[f.Field], f.Message)
	}
	m.display.Error("validation failed")
	for _, field := range order {
		m.display.Println("  %s: %s", field, strings.Join(grouped[field], "; "))
	}
}

func (m *Menu) addByISBN(ctx context.Context) error {
	isbn, err := m.ask("ISBN: ")
	if err != nil {
		return err
	}
	m.display.Info("looking up %s...", isbn)
	book, err := m.catalog.AddByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	m.display.Success("added: %s", book.Display())
	return nil
}

func (m *Menu) removeBook(ctx context.Context) error {
	isbn, err := m.ask("ISBN: ")
	if err != nil {
		return err
	}
	book, err := m.catalog.Remove(ctx, isbn)
	if err != nil {
		return err
	}
	m.display.Success("'%s' removed", book.Title)
	return nil
}

func (m *Menu) listBooks(_ context.Context) error {
	books := m.catalog.List()
	if len(books) == 0 {
		m.display.Warning("catalog is empty")
		return nil
	}
	m.display.Info("%d books in %s", len(books), m.catalog.Name())
	for i, b := range books {
		suffix := ""
		if b.Borrowed {
			suffix = " (borrowed)"
		}
		m.display.Println("%d. %s%s", i+1, b.Display(), suffix)
	}
	return nil
}

func (m *Menu) findBook(_ context.Context) error {
	title, err := m.ask("Title (optional): ")
	if err != nil {
		return err
	}
	author, err := m.ask("Author (optional): ")
	if err != nil {
		return err
	}
	isbn, err := m.ask("ISBN (optional): ")
	if err != nil {
		return err
	}
	if title == "" && author == "" && isbn == "" {
		m.display.Warning("%v", errs.ErrNoCriteria)
		return nil
	}
	book, ok := m.catalog.Find(title, author, isbn)
	if !ok {
		m.display.Warning("no matching book")
		return nil
	}
	m.display.Success("found: %s", book.Display())
	return nil
}

func (m *Menu) borrowBook(ctx context.Context) error {
	isbn, err := m.ask("ISBN: ")
	if err != nil {
		return err
	}
	book, err := m.catalog.Borrow(ctx, isbn)
	if err != nil {
		return err
	}
	m.display.Success("'%s' borrowed", book.Title)
	return nil
}

func (m *Menu) returnBook(ctx context.Context) error {
	isbn, err := m.ask("ISBN: ")
	if err != nil {
		return err
	}
	book, err := m.catalog.Return(ctx, isbn)
	if err != nil {
		return err
	}
	m.display.Success("'%s' returned", book.Title)
	return nil
}

func (m *Menu) stats(_ context.Context) error {
	st := m.catalog.Stats()
	m.display.Info("%s", st.LibraryName)
	m.display.Println("Total:     %d", st.Total)
	m.display.Println("Available: %d", st.Available)
	m.display.Println("Borrowed:  %d", st.Borrowed)
	return nil
}

func parseKindInput(s string) model.Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "book":
		return model.KindBook
	case "ebook", "e-book":
		return model.KindEBook
	case "audiobook", "audio":
		return model.KindAudioBook
	default:
		return model.Kind(s)
	}
}
