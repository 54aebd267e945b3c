package handler

import (
	"context"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	Name() string
	Count() int
	List() []model.Book
	Stats() model.Stats
	Find(title, author, isbn string) (model.Book, bool)
	FindByISBN(isbn string) (model.Book, bool)
	Add(ctx context.Context, book model.Book) error
	AddByISBN(ctx context.Context, isbn string) (model.Book, error)
	Remove(ctx context.Context, isbn string) (model.Book, error)
	Borrow(ctx context.Context, isbn string) (model.Book, error)
	Return(ctx context.Context, isbn string) (model.Book, error)
}

var _ CatalogService = (*service.Service)(nil)
