package model

// CreateBookRequest is the validated-input record for manual additions.
// PublicationYear is checked and echoed back but never stored on Book.
type CreateBookRequest struct {
	Title           string  `json:"title" validate:"required,textlen"`
	Author          string  `json:"author" validate:"required,textlen"`
	ISBN            string  `json:"isbn" validate:"required,min=10,max=13"`
	PublicationYear int     `json:"publicationYear" validate:"pubyear"`
	Type            Kind    `json:"type" validate:"omitempty,oneof=Book EBook AudioBook"`
	FileFormat      string  `json:"fileFormat" validate:"required_if=Type EBook"`
	FileSizeMB      float64 `json:"fileSizeMB" validate:"required_if=Type EBook,gte=0"`
	DurationMinutes int     `json:"durationMinutes" validate:"required_if=Type AudioBook,gte=0"`
}

func (r CreateBookRequest) ToBook() Book {
	switch r.Type {
	case KindEBook:
		return NewEBook(r.Title, r.Author, r.ISBN, r.FileFormat, r.FileSizeMB)
	case KindAudioBook:
		return NewAudioBook(r.Title, r.Author, r.ISBN, r.DurationMinutes)
	default:
		return NewBook(r.Title, r.Author, r.ISBN)
	}
}

type AddByISBNRequest struct {
	ISBN string `json:"isbn"`
}

type BookResponse struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            string  `json:"isbn"`
	Borrowed        bool    `json:"borrowed"`
	Type            Kind    `json:"type"`
	FileFormat      string  `json:"fileFormat,omitempty"`
	FileSizeMB      float64 `json:"fileSizeMB,omitempty"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	PublicationYear *int    `json:"publicationYear,omitempty"`
}

func NewBookResponse(b Book) BookResponse {
	return BookResponse{
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Borrowed:        b.Borrowed,
		Type:            b.Kind,
		FileFormat:      b.FileFormat,
		FileSizeMB:      b.FileSizeMB,
		DurationMinutes: b.DurationMinutes,
	}
}

type BookEnvelope struct {
	Message string       `json:"message"`
	Book    BookResponse `json:"book"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Message   string `json:"message"`
	BookCount int    `json:"bookCount"`
}
