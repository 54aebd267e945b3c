package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/catalog/internal/repository"
	"github.com/Astemirdum/book-catalog/catalog/migrations"
	"github.com/Astemirdum/book-catalog/pkg/postgres"
	"github.com/Astemirdum/book-catalog/pkg/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleCatalog() model.Catalog {
	audio := model.NewAudioBook("Emma", "Jane Austen", "9780141439587", 720)
	audio.Borrowed = true
	return model.Catalog{
		Name: "Test Library",
		Books: []model.Book{
			model.NewBook("1984", "George Orwell", "1234567890"),
			model.NewEBook("Dune", "Frank Herbert", "9780441013593", "EPUB", 2.5),
			audio,
		},
	}
}

func roundTrip(t *testing.T, repo repository.Repository) {
	t.Helper()
	ctx := context.Background()

	want := sampleCatalog()
	require.NoError(t, repo.Save(ctx, want))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// full overwrite, not a merge
	want.Books = want.Books[1:2]
	want.Books[0].Borrowed = true
	want.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, want))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFileRepository_RoundTrip(t *testing.T) {
	for _, name := range []string{"catalog.json", "catalog.yaml", "catalog.yml"} {
		name := name
		t.Run(name, func(t *testing.T) {
			repo := repository.NewFileRepository(filepath.Join(t.TempDir(), "nested", name), zap.NewNop())
			roundTrip(t, repo)
			require.NoError(t, repo.Close())
		})
	}
}

func TestFileRepository_Missing(t *testing.T) {
	repo := repository.NewFileRepository(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	c, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, c.Name)
	require.Empty(t, c.Books)
}

func TestFileRepository_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	c, err := repository.NewFileRepository(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, c.Books)
}

func TestFileRepository_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := repository.NewFileRepository(path, zap.NewNop()).Load(context.Background())
	require.Error(t, err)
}

func TestFileRepository_LegacyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	doc := `{
  "name": "Old Library",
  "books": [
    {"title": "Emma", "author": "Jane Austen", "isbn": "9780141439587", "is_borrowed": false, "type": "AudioBook", "duration_hours": 12.5},
    {"title": "Map", "author": "Nobody", "isbn": "1111111111", "is_borrowed": true, "type": "Atlas"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := repository.NewFileRepository(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Old Library", c.Name)
	require.Len(t, c.Books, 2)
	require.Equal(t, model.KindAudioBook, c.Books[0].Kind)
	require.Equal(t, 750, c.Books[0].DurationMinutes)
	require.Equal(t, model.KindBook, c.Books[1].Kind)
	require.True(t, c.Books[1].Borrowed)
}

func TestFileRepository_DuplicateISBN(t *testing.T) {
	for _, name := range []string{"dup.json", "dup.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			repo := repository.NewFileRepository(path, zap.NewNop())
			doc := `{"name": "Dup Library", "books": [
  {"title": "A", "author": "a", "isbn": "1234567890", "type": "Book"},
  {"title": "C", "author": "c", "isbn": "0987654321", "type": "Book"},
  {"title": "B", "author": "b", "isbn": "1234567890", "type": "Book"}
]}`
			// a JSON document is valid YAML too
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

			c, err := repo.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, c.Books, 2)
			require.Equal(t, "A", c.Books[0].Title)
			require.Equal(t, "C", c.Books[1].Title)
		})
	}
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := sqlite.NewSQLiteDB(ctx, path, migrations.SQLite(), zap.NewNop())
	require.NoError(t, err)
	repo := repository.NewSQLiteRepository(db, zap.NewNop())

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, c.Name)
	require.Empty(t, c.Books)

	roundTrip(t, repo)
	require.NoError(t, repo.Close())

	// reopening runs migrations again and keeps the data
	db, err = sqlite.NewSQLiteDB(ctx, path, migrations.SQLite(), zap.NewNop())
	require.NoError(t, err)
	repo = repository.NewSQLiteRepository(db, zap.NewNop())
	defer repo.Close()
	c, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Renamed", c.Name)
	require.Len(t, c.Books, 1)
}

func TestPostgresRepository_RoundTrip(t *testing.T) {
	dsn := os.Getenv("CATALOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := postgres.NewPostgresDB(ctx, &postgres.DB{DSN: dsn}, migrations.Postgres(), zap.NewNop())
	require.NoError(t, err)
	repo := repository.NewPostgresRepository(pool, zap.NewNop())
	defer repo.Close()

	roundTrip(t, repo)
}

func TestMemoryRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(model.Catalog{})
	roundTrip(t, repo)
	require.Equal(t, 2, repo.Saves())

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	c.Books[0].Title = "mutated"
	again, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Dune", again.Books[0].Title)
}
