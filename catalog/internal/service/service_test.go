package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/catalog/internal/repository"
	"github.com/Astemirdum/book-catalog/catalog/internal/service"
	"github.com/Astemirdum/book-catalog/pkg/kafka"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lookupMock struct {
	mock.Mock
}

func (m *lookupMock) Lookup(ctx context.Context, isbn string) (model.Metadata, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(model.Metadata), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CatalogEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev kafka.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []kafka.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type failingRepo struct {
	repository.MemoryRepository
}

var errDisk = errors.New("disk full")

func (r *failingRepo) Save(context.Context, model.Catalog) error {
	return errDisk
}

func newService(t *testing.T, repo repository.Repository, lookup service.MetadataClient) (*service.Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := service.NewService(context.Background(), repo, lookup, pub, "City Library", zap.NewNop())
	require.NoError(t, err)
	return svc, pub
}

func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(model.Catalog{})
	svc, pub := newService(t, repo, nil)

	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))
	require.Equal(t, 1, svc.Count())

	_, err := svc.Borrow(ctx, "1234567890")
	require.NoError(t, err)
	b, ok := svc.FindByISBN("1234567890")
	require.True(t, ok)
	require.True(t, b.Borrowed)

	_, err = svc.Borrow(ctx, "1234567890")
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)

	_, err = svc.Return(ctx, "1234567890")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, "1234567890")
	require.NoError(t, err)
	require.Equal(t, "1984", removed.Title)
	require.Equal(t, 0, svc.Count())

	require.Equal(t, 4, repo.Saves())
	require.Equal(t, []kafka.EventType{kafka.EventAdded, kafka.EventBorrowed, kafka.EventReturned, kafka.EventRemoved}, pub.types())
	require.Equal(t, "City Library", pub.events[0].Library)
}

func TestService_AddRemoveRestoresCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("Dune", "Frank Herbert", "9780441013593")))

	books := []model.Book{
		model.NewBook("1984", "George Orwell", "1234567890"),
		model.NewEBook("Go", "Rob Pike", "1111111111", "PDF", 1.5),
		model.NewAudioBook("Emma", "Jane Austen", "2222222222", 600),
	}
	for _, b := range books {
		before := svc.Count()
		require.NoError(t, svc.Add(ctx, b))
		_, err := svc.Remove(ctx, b.ISBN)
		require.NoError(t, err)
		require.Equal(t, before, svc.Count())
		_, ok := svc.FindByISBN(b.ISBN)
		require.False(t, ok)
	}
}

func TestService_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(model.Catalog{})
	svc, pub := newService(t, repo, nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))

	err := svc.Add(ctx, model.NewBook("Other", "Someone", "1234567890"))
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Equal(t, 1, svc.Count())
	require.Equal(t, 1, repo.Saves())
	require.Len(t, pub.types(), 1)
}

func TestService_UnknownISBN(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(model.Catalog{})
	svc, pub := newService(t, repo, nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))

	for _, isbn := range []string{"0000000000", "", "123"} {
		_, err := svc.Borrow(ctx, isbn)
		require.ErrorIs(t, err, errs.ErrNotFound)
		_, err = svc.Return(ctx, isbn)
		require.ErrorIs(t, err, errs.ErrNotFound)
		_, err = svc.Remove(ctx, isbn)
		require.ErrorIs(t, err, errs.ErrNotFound)
	}
	require.Equal(t, 1, repo.Saves())
	require.Len(t, pub.types(), 1)
	b, _ := svc.FindByISBN("1234567890")
	require.False(t, b.Borrowed)
}

func TestService_ToggleSequence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))

	_, err := svc.Return(ctx, "1234567890")
	require.ErrorIs(t, err, errs.ErrNotBorrowed)

	_, err = svc.Borrow(ctx, "1234567890")
	require.NoError(t, err)
	_, err = svc.Return(ctx, "1234567890")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, "1234567890")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, "1234567890")
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)
}

func TestService_DuplicateISBNInFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.json")
	doc := `{"books": [
  {"title": "A", "author": "a", "isbn": "1234567890", "type": "Book"},
  {"title": "B", "author": "b", "isbn": "1234567890", "type": "Book"}
]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	svc, _ := newService(t, repository.NewFileRepository(path, zap.NewNop()), nil)
	require.Equal(t, 1, svc.Count())

	removed, err := svc.Remove(ctx, "1234567890")
	require.NoError(t, err)
	require.Equal(t, "A", removed.Title)
	_, ok := svc.FindByISBN("1234567890")
	require.False(t, ok)
}

func TestService_Find(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)

	b, ok := svc.Find("", "", "")
	require.False(t, ok)
	require.Empty(t, b)

	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))
	require.NoError(t, svc.Add(ctx, model.NewBook("Animal Farm", "George Orwell", "0987654321")))
	require.NoError(t, svc.Add(ctx, model.NewBook("Dune", "Frank Herbert", "9780441013593")))

	tests := []struct {
		name                string
		title, author, isbn string
		wantISBN            string
		wantOK              bool
	}{
		{name: "all empty", wantOK: false},
		{name: "blank criteria", title: "  ", author: "\t", wantOK: false},
		{name: "title case insensitive", title: "animal FARM", wantISBN: "0987654321", wantOK: true},
		{name: "author first in order", author: "george orwell", wantISBN: "1234567890", wantOK: true},
		{name: "title wins over author", title: "Dune", author: "George Orwell", wantISBN: "9780441013593", wantOK: true},
		{name: "falls through to author", title: "Missing", author: "Frank Herbert", wantISBN: "9780441013593", wantOK: true},
		{name: "falls through to isbn", title: "Missing", author: "Nobody", isbn: "0987654321", wantISBN: "0987654321", wantOK: true},
		{name: "title is exact not substring", title: "198", wantOK: false},
		{name: "padded title is not trimmed", title: "  1984 ", wantOK: false},
		{name: "no match", isbn: "5555555555", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := svc.Find(tt.title, tt.author, tt.isbn)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.wantISBN, got.ISBN)
			}
		})
	}
}

func TestService_StatsAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))
	require.NoError(t, svc.Add(ctx, model.NewEBook("Dune", "Frank Herbert", "9780441013593", "EPUB", 2)))
	require.NoError(t, svc.Add(ctx, model.NewAudioBook("Emma", "Jane Austen", "9780141439587", 720)))
	_, err := svc.Borrow(ctx, "9780441013593")
	require.NoError(t, err)

	st := svc.Stats()
	require.Equal(t, model.Stats{LibraryName: "City Library", Total: 3, Available: 2, Borrowed: 1}, st)
	require.Equal(t, st.Total, st.Available+st.Borrowed)

	list := svc.List()
	require.Len(t, list, 3)
	require.Equal(t, []string{"1984", "Dune", "Emma"}, []string{list[0].Title, list[1].Title, list[2].Title})

	list[0].Title = "changed"
	b, _ := svc.FindByISBN("1234567890")
	require.Equal(t, "1984", b.Title)
}

func TestService_StoredNameWins(t *testing.T) {
	repo := repository.NewMemoryRepository(model.Catalog{
		Name:  "Stored Library",
		Books: []model.Book{model.NewBook("1984", "George Orwell", "1234567890")},
	})
	svc, _ := newService(t, repo, nil)
	require.Equal(t, "Stored Library", svc.Name())
	require.Equal(t, 1, svc.Count())

	fresh, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)
	require.Equal(t, "City Library", fresh.Name())
}

func TestService_WriteThroughSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(model.Catalog{})
	svc, _ := newService(t, repo, nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))
	_, err := svc.Borrow(ctx, "1234567890")
	require.NoError(t, err)

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "City Library", c.Name)
	require.Len(t, c.Books, 1)
	require.True(t, c.Books[0].Borrowed)
}

func TestService_PersistenceFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t, &failingRepo{}, nil)

	err := svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890"))
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.ErrorIs(t, err, errDisk)
	require.Equal(t, 1, svc.Count())

	b, err := svc.Borrow(ctx, "1234567890")
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.True(t, b.Borrowed)
	require.Len(t, pub.types(), 2)
}

func TestService_PublishFailureIgnored(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, err := service.NewService(ctx, repository.NewMemoryRepository(model.Catalog{}), nil, pub, "x", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))
}

func TestService_AddByISBN(t *testing.T) {
	ctx := context.Background()
	const isbn = "9780140328721"

	tests := []struct {
		name      string
		isbn      string
		seed      []model.Book
		mockSetup func(m *lookupMock)
		wantErr   error
		wantCount int
	}{
		{
			name: "ok",
			isbn: isbn,
			mockSetup: func(m *lookupMock) {
				m.On("Lookup", mock.Anything, isbn).
					Return(model.Metadata{Title: "Fantastic Mr. Fox", Author: "Roald Dahl", ISBN: isbn}, nil).Once()
			},
			wantCount: 1,
		},
		{
			name:      "empty isbn",
			isbn:      "  ",
			mockSetup: func(m *lookupMock) {},
			wantErr:   errs.ErrISBNRequired,
		},
		{
			name:      "already present skips network",
			isbn:      isbn,
			seed:      []model.Book{model.NewBook("Fantastic Mr. Fox", "Roald Dahl", isbn)},
			mockSetup: func(m *lookupMock) {},
			wantErr:   errs.ErrAlreadyExists,
			wantCount: 1,
		},
		{
			name: "not found",
			isbn: isbn,
			mockSetup: func(m *lookupMock) {
				m.On("Lookup", mock.Anything, isbn).Return(model.Metadata{}, errs.ErrMetadataNotFound).Once()
			},
			wantErr: errs.ErrMetadataNotFound,
		},
		{
			name: "connectivity",
			isbn: isbn,
			mockSetup: func(m *lookupMock) {
				m.On("Lookup", mock.Anything, isbn).Return(model.Metadata{}, errs.ErrConnectivity).Once()
			},
			wantErr: errs.ErrConnectivity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &lookupMock{}
			tt.mockSetup(m)
			repo := repository.NewMemoryRepository(model.Catalog{Books: tt.seed})
			svc, _ := newService(t, repo, m)

			book, err := svc.AddByISBN(ctx, tt.isbn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, 0, repo.Saves())
			} else {
				require.NoError(t, err)
				require.Equal(t, model.NewBook("Fantastic Mr. Fox", "Roald Dahl", isbn), book)
				require.Equal(t, 1, repo.Saves())
			}
			require.Equal(t, tt.wantCount, svc.Count())
			m.AssertExpectations(t)
		})
	}
}

func TestService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewMemoryRepository(model.Catalog{}), nil)
	require.NoError(t, svc.Add(ctx, model.NewBook("1984", "George Orwell", "1234567890")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Borrow(ctx, "1234567890")
			_, _ = svc.Return(ctx, "1234567890")
		}()
		go func() {
			defer wg.Done()
			_ = svc.Stats()
			_, _ = svc.Find("1984", "", "")
		}()
	}
	wg.Wait()
	st := svc.Stats()
	require.Equal(t, st.Total, st.Available+st.Borrowed)
}
