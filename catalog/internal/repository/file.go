package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileFormat int

const (
	formatJSON fileFormat = iota
	formatYAML
)

type snapshot struct {
	Name  string       `json:"name" yaml:"name"`
	Books []bookRecord `json:"books" yaml:"books"`
}

type bookRecord struct {
	Title           string   `json:"title" yaml:"title"`
	Author          string   `json:"author" yaml:"author"`
	ISBN            string   `json:"isbn" yaml:"isbn"`
	IsBorrowed      bool     `json:"is_borrowed" yaml:"is_borrowed"`
	Type            string   `json:"type" yaml:"type"`
	FileFormat      *string  `json:"file_format,omitempty" yaml:"file_format,omitempty"`
	FileSize        *float64 `json:"file_size,omitempty" yaml:"file_size,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
	// written by older releases; read only
	DurationHours *float64 `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
}

// FileRepository keeps the catalog in a single JSON or YAML document chosen by extension.
type FileRepository struct {
	path   string
	format fileFormat
	log    *zap.Logger
}

func NewFileRepository(path string, log *zap.Logger) *FileRepository {
	format := formatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = formatYAML
	}
	return &FileRepository{
		path:   path,
		format: format,
		log:    log.Named("file-repo"),
	}
}

func (r *FileRepository) Load(_ context.Context) (model.Catalog, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Debug("no catalog file yet", zap.String("path", r.path))
			return model.Catalog{Books: []model.Book{}}, nil
		}
		return model.Catalog{}, errors.Wrap(err, "reading catalog")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Catalog{Books: []model.Book{}}, nil
	}

	var snap snapshot
	switch r.format {
	case formatYAML:
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return model.Catalog{}, errors.Wrapf(err, "parsing catalog %s", r.path)
	}

	// isbn is unique in the catalog; later duplicates are dropped
	c := model.Catalog{Name: snap.Name, Books: make([]model.Book, 0, len(snap.Books))}
	seen := make(map[string]struct{}, len(snap.Books))
	for _, rec := range snap.Books {
		if _, ok := seen[rec.ISBN]; ok {
			r.log.Warn("duplicate isbn in catalog file, keeping first",
				zap.String("path", r.path), zap.String("isbn", rec.ISBN), zap.String("title", rec.Title))
			continue
		}
		seen[rec.ISBN] = struct{}{}
		c.Books = append(c.Books, rec.toBook())
	}
	return c, nil
}

func (r *FileRepository) Save(_ context.Context, c model.Catalog) error {
	snap := snapshot{Name: c.Name, Books: make([]bookRecord, 0, len(c.Books))}
	for _, b := range c.Books {
		snap.Books = append(snap.Books, newBookRecord(b))
	}

	var (
		data []byte
		err  error
	)
	switch r.format {
	case formatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	return r.writeAtomic(data)
}

func (r *FileRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating catalog dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing catalog")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing catalog")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.Wrap(err, "replacing catalog")
	}
	return nil
}

func (r *FileRepository) Close() error {
	return nil
}

func newBookRecord(b model.Book) bookRecord {
	rec := bookRecord{
		Title:      b.Title,
		Author:     b.Author,
		ISBN:       b.ISBN,
		IsBorrowed: b.Borrowed,
		Type:       string(b.Kind),
	}
	switch b.Kind {
	case model.KindEBook:
		format, size := b.FileFormat, b.FileSizeMB
		rec.FileFormat, rec.FileSize = &format, &size
	case model.KindAudioBook:
		minutes := b.DurationMinutes
		rec.DurationMinutes = &minutes
	default:
		rec.Type = string(model.KindBook)
	}
	return rec
}

func (rec bookRecord) toBook() model.Book {
	b := model.Book{
		Title:    rec.Title,
		Author:   rec.Author,
		ISBN:     rec.ISBN,
		Borrowed: rec.IsBorrowed,
		Kind:     model.ParseKind(rec.Type),
	}
	switch b.Kind {
	case model.KindEBook:
		if rec.FileFormat != nil {
			b.FileFormat = *rec.FileFormat
		}
		if rec.FileSize != nil {
			b.FileSizeMB = *rec.FileSize
		}
	case model.KindAudioBook:
		switch {
		case rec.DurationMinutes != nil:
			b.DurationMinutes = *rec.DurationMinutes
		case rec.DurationHours != nil:
			b.DurationMinutes = int(math.Round(*rec.DurationHours * 60))
		}
	}
	return b
}
