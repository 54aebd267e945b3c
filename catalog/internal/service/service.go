package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/events"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/catalog/internal/repository"
	"github.com/Astemirdum/book-catalog/pkg/kafka"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MetadataClient resolves title and author for an ISBN from an external service.
type MetadataClient interface {
	Lookup(ctx context.Context, isbn string) (model.Metadata, error)
}

// Service is the catalog store. Every successful mutation is written through
// to the repository before the call returns.
type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	lookup    MetadataClient
	publisher events.Publisher
	now       func() time.Time

	mu    sync.RWMutex
	name  string
	books []model.Book
}

// NewService loads the stored catalog. A name already persisted wins over name.
func NewService(
	ctx context.Context,
	repo repository.Repository,
	lookup MetadataClient,
	publisher events.Publisher,
	name string,
	log *zap.Logger,
) (*Service, error) {
	c, err := repo.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	if c.Name != "" {
		name = c.Name
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	books := make([]model.Book, 0, len(c.Books))
	books = append(books, c.Books...)

	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		lookup:    lookup,
		publisher: publisher,
		now:       time.Now,
		name:      name,
		books:     books,
	}
	s.log.Info("catalog loaded", zap.String("name", name), zap.Int("books", len(books)))
	return s, nil
}

func (s *Service) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// List returns a copy of the books in insertion order.
func (s *Service) List() []model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Service) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := model.Stats{LibraryName: s.name, Total: len(s.books)}
	for i := range s.books {
		if s.books[i].Borrowed {
			st.Borrowed++
		}
	}
	st.Available = st.Total - st.Borrowed
	return st
}

func (s *Service) Add(ctx context.Context, book model.Book) error {
	_, err := s.mutate(ctx, kafka.EventAdded, func() (model.Book, error) {
		if s.indexOf(book.ISBN) >= 0 {
			return book, errors.Wrapf(errs.ErrAlreadyExists, "isbn %s", book.ISBN)
		}
		book.Kind = model.ParseKind(string(book.Kind))
		s.books = append(s.books, book)
		return book, nil
	})
	return err
}

func (s *Service) Remove(ctx context.Context, isbn string) (model.Book, error) {
	return s.mutate(ctx, kafka.EventRemoved, func() (model.Book, error) {
		i := s.indexOf(isbn)
		if i < 0 {
			return model.Book{}, errs.ErrNotFound
		}
		book := s.books[i]
		s.books = append(s.books[:i], s.books[i+1:]...)
		return book, nil
	})
}

func (s *Service) Borrow(ctx context.Context, isbn string) (model.Book, error) {
	return s.mutate(ctx, kafka.EventBorrowed, func() (model.Book, error) {
		i := s.indexOf(isbn)
		if i < 0 {
			return model.Book{}, errs.ErrNotFound
		}
		err := s.books[i].Borrow()
		return s.books[i], err
	})
}

func (s *Service) Return(ctx context.Context, isbn string) (model.Book, error) {
	return s.mutate(ctx, kafka.EventReturned, func() (model.Book, error) {
		i := s.indexOf(isbn)
		if i < 0 {
			return model.Book{}, errs.ErrNotFound
		}
		err := s.books[i].Return()
		return s.books[i], err
	})
}

// mutate runs apply under the write lock. When apply succeeds the new state
// is persisted and an event is published after the lock is released.
func (s *Service) mutate(ctx context.Context, typ kafka.EventType, apply func() (model.Book, error)) (model.Book, error) {
	s.mu.Lock()
	book, err := apply()
	if err != nil {
		s.mu.Unlock()
		return book, err
	}
	s.log.Info("book "+string(typ), zap.String("isbn", book.ISBN), zap.String("title", book.Title))
	err = s.persist(ctx)
	library := s.name
	s.mu.Unlock()

	s.publish(ctx, library, typ, book)
	return book, err
}

func (s *Service) FindByTitle(title string) (model.Book, bool) {
	return s.findBy(func(b model.Book) bool { return strings.EqualFold(b.Title, title) })
}

func (s *Service) FindByAuthor(author string) (model.Book, bool) {
	return s.findBy(func(b model.Book) bool { return strings.EqualFold(b.Author, author) })
}

func (s *Service) FindByISBN(isbn string) (model.Book, bool) {
	return s.findBy(func(b model.Book) bool { return b.ISBN == isbn })
}

// Find tries title, then author, then isbn. Empty criteria are skipped;
// the rest are matched as given.
func (s *Service) Find(title, author, isbn string) (model.Book, bool) {
	if title != "" {
		if b, ok := s.FindByTitle(title); ok {
			return b, true
		}
	}
	if author != "" {
		if b, ok := s.FindByAuthor(author); ok {
			return b, true
		}
	}
	if isbn != "" {
		return s.FindByISBN(isbn)
	}
	return model.Book{}, false
}

// AddByISBN fetches metadata and adds a plain book. The store is not touched
// unless the lookup succeeds.
func (s *Service) AddByISBN(ctx context.Context, isbn string) (model.Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return model.Book{}, errs.ErrISBNRequired
	}
	if _, ok := s.FindByISBN(isbn); ok {
		return model.Book{}, errors.Wrapf(errs.ErrAlreadyExists, "isbn %s", isbn)
	}
	if s.lookup == nil {
		return model.Book{}, errs.ErrMetadataService
	}

	meta, err := s.lookup.Lookup(ctx, isbn)
	if err != nil {
		s.log.Warn("metadata lookup", zap.String("isbn", isbn), zap.Error(err))
		return model.Book{}, err
	}
	book := model.NewBook(meta.Title, meta.Author, isbn)
	if err := s.Add(ctx, book); err != nil {
		return book, err
	}
	return book, nil
}

func (s *Service) findBy(match func(model.Book) bool) (model.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if match(b) {
			return b, true
		}
	}
	return model.Book{}, false
}

// indexOf must be called with mu held.
func (s *Service) indexOf(isbn string) int {
	for i := range s.books {
		if s.books[i].ISBN == isbn {
			return i
		}
	}
	return -1
}

// persist must be called with mu held. The in-memory state is kept on failure.
func (s *Service) persist(ctx context.Context) error {
	snap := model.Catalog{Name: s.name, Books: make([]model.Book, len(s.books))}
	copy(snap.Books, s.books)
	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Error("persist catalog", zap.Int("books", len(snap.Books)), zap.Error(err))
		return errs.Persistence(err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, library string, typ kafka.EventType, b model.Book) {
	ev := kafka.CatalogEvent{
		Timestamp: s.now().UTC(),
		Type:      typ,
		Library:   library,
		ISBN:      b.ISBN,
		Title:     b.Title,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event", zap.String("type", string(typ)), zap.String("isbn", b.ISBN), zap.Error(err))
	}
}
