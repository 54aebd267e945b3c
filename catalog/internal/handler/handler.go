package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	md "github.com/Astemirdum/book-catalog/pkg/middleware"
	"github.com/Astemirdum/book-catalog/pkg/validate"
	_ "github.com/Astemirdum/book-catalog/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	catalogSvc CatalogService
	validator  *validate.CustomValidator
	log        *zap.Logger
}

func New(catalogSvc CatalogService, validator *validate.CustomValidator, log *zap.Logger) *Handler {
	if validator == nil {
		validator = validate.NewCustomValidator()
	}
	return &Handler{
		catalogSvc: catalogSvc,
		validator:  validator,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Validator = h.validator

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/", h.Root)
	api.GET("/stats", h.Stats)

	api.POST("/books", h.AddBook)
	api.GET("/books", h.ListBooks)
	api.GET("/books/search", h.SearchBook)
	api.POST("/books/isbn", h.AddBookByISBN)
	api.GET("/books/:isbn", h.GetBook)
	api.DELETE("/books/:isbn", h.RemoveBook)
	api.PATCH("/books/:isbn/borrow", h.BorrowBook)
	api.PATCH("/books/:isbn/return", h.ReturnBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Root godoc
// @Summary catalog name and size
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, model.RootResponse{
		Message:   h.catalogSvc.Name(),
		BookCount: h.catalogSvc.Count(),
	})
}

// Stats godoc
// @Summary availability counters
// @Produce json
// @Success 200 {object} model.Stats
// @Router /stats [get]
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogSvc.Stats())
}

// AddBook godoc
// @Summary add a book
// @Accept json
// @Produce json
// @Param book body model.CreateBookRequest true "book"
// @Success 200 {object} model.BookEnvelope
// @Failure 400 {object} model.MessageResponse
// @Failure 422 {object} errs.ValidationErrorResponse
// @Router /books [post]
func (h *Handler) AddBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		if fields := h.validator.FieldErrors(err); fields != nil {
			return c.JSON(http.StatusUnprocessableEntity, errs.ValidationErrorResponse{
				Message: "validation failed",
				Errors:  fields,
			})
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	book := req.ToBook()
	if err := h.catalogSvc.Add(c.Request().Context(), book); err != nil {
		return h.mutationError(err, http.StatusBadRequest)
	}
	resp := model.NewBookResponse(book)
	year := req.PublicationYear
	resp.PublicationYear = &year
	return c.JSON(http.StatusOK, model.BookEnvelope{
		Message: fmt.Sprintf("'%s' added", book.Title),
		Book:    resp,
	})
}

// ListBooks godoc
// @Summary all books in insertion order
// @Produce json
// @Success 200 {array} model.BookResponse
// @Router /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	books := h.catalogSvc.List()
	resp := make([]model.BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, model.NewBookResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchBook godoc
// @Summary first match by title, then author, then isbn
// @Produce json
// @Param title query string false "title"
// @Param author query string false "author"
// @Param isbn query string false "isbn"
// @Success 200 {object} model.BookResponse
// @Failure 400 {object} model.MessageResponse
// @Failure 404 {object} model.MessageResponse
// @Router /books/search [get]
func (h *Handler) SearchBook(c echo.Context) error {
	title, author, isbn := c.QueryParam("title"), c.QueryParam("author"), c.QueryParam("isbn")
	if title == "" && author == "" && isbn == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrNoCriteria.Error())
	}
	book, ok := h.catalogSvc.Find(title, author, isbn)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, errs.ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, model.NewBookResponse(book))
}

// GetBook godoc
// @Summary book by isbn
// @Produce json
// @Param isbn path string true "isbn"
// @Success 200 {object} model.BookResponse
// @Failure 404 {object} model.MessageResponse
// @Router /books/{isbn} [get]
func (h *Handler) GetBook(c echo.Context) error {
	book, ok := h.catalogSvc.FindByISBN(c.Param("isbn"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, errs.ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, model.NewBookResponse(book))
}

// RemoveBook godoc
// @Summary delete a book
// @Produce json
// @Param isbn path string true "isbn"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.MessageResponse
// @Router /books/{isbn} [delete]
func (h *Handler) RemoveBook(c echo.Context) error {
	book, err := h.catalogSvc.Remove(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.mutationError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: fmt.Sprintf("'%s' removed", book.Title)})
}

// BorrowBook godoc
// @Summary mark a book as borrowed
// @Produce json
// @Param isbn path string true "isbn"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.MessageResponse
// @Router /books/{isbn}/borrow [patch]
func (h *Handler) BorrowBook(c echo.Context) error {
	book, err := h.catalogSvc.Borrow(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return h.mutationError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: fmt.Sprintf("'%s' borrowed", book.Title)})
}

// ReturnBook godoc
// @Summary mark a book as returned
// @Produce json
// @Param isbn path string true "isbn"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.MessageResponse
// @Router /books/{isbn}/return [patch]
func (h *Handler) ReturnBook(c echo.Context) error {
	book, err := h.catalogSvc.Return(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return h.mutationError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: fmt.Sprintf("'%s' returned", book.Title)})
}

// AddBookByISBN godoc
// @Summary add a book using Open Library metadata
// @Accept json
// @Produce json
// @Param req body model.AddByISBNRequest true "isbn"
// @Success 200 {object} model.BookEnvelope
// @Failure 400 {object} model.MessageResponse
// @Router /books/isbn [post]
func (h *Handler) AddBookByISBN(c echo.Context) error {
	var req model.AddByISBNRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	isbn := strings.TrimSpace(req.ISBN)
	if isbn == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrISBNRequired.Error())
	}
	book, err := h.catalogSvc.AddByISBN(c.Request().Context(), isbn)
	if err != nil {
		return h.mutationError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, model.BookEnvelope{
		Message: fmt.Sprintf("'%s' added", book.Title),
		Book:    model.NewBookResponse(book),
	})
}

// mutationError answers 500 for storage failures and fallback for business outcomes.
func (h *Handler) mutationError(err error, fallback int) error {
	if errors.Is(err, errs.ErrPersistence) {
		h.log.Error("persistence", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, errs.ErrPersistence.Error())
	}
	return echo.NewHTTPError(fallback, err.Error())
}
