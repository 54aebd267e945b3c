// Package swagger registers the OpenAPI document served at /swagger/*.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "summary": "catalog name and size",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RootResponse"}}
                }
            }
        },
        "/books": {
            "get": {
                "produces": ["application/json"],
                "summary": "all books in insertion order",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.BookResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "add a book",
                "parameters": [
                    {"description": "book", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BookEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errs.ValidationErrorResponse"}}
                }
            }
        },
        "/books/isbn": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "add a book using Open Library metadata",
                "parameters": [
                    {"description": "isbn", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AddByISBNRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BookEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/books/search": {
            "get": {
                "produces": ["application/json"],
                "summary": "first match by title, then author, then isbn",
                "parameters": [
                    {"type": "string", "description": "title", "name": "title", "in": "query"},
                    {"type": "string", "description": "author", "name": "author", "in": "query"},
                    {"type": "string", "description": "isbn", "name": "isbn", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BookResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/books/{isbn}": {
            "get": {
                "produces": ["application/json"],
                "summary": "book by isbn",
                "parameters": [
                    {"type": "string", "description": "isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BookResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "delete a book",
                "parameters": [
                    {"type": "string", "description": "isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/books/{isbn}/borrow": {
            "patch": {
                "produces": ["application/json"],
                "summary": "mark a book as borrowed",
                "parameters": [
                    {"type": "string", "description": "isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/books/{isbn}/return": {
            "patch": {
                "produces": ["application/json"],
                "summary": "mark a book as returned",
                "parameters": [
                    {"type": "string", "description": "isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "summary": "availability counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Stats"}}
                }
            }
        }
    },
    "definitions": {
        "errs.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/validate.FieldError"}}
            }
        },
        "validate.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "model.AddByISBNRequest": {
            "type": "object",
            "properties": {
                "isbn": {"type": "string"}
            }
        },
        "model.CreateBookRequest": {
            "type": "object",
            "required": ["author", "isbn", "title"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string", "maxLength": 13, "minLength": 10},
                "publicationYear": {"type": "integer"},
                "type": {"type": "string", "enum": ["Book", "EBook", "AudioBook"]},
                "fileFormat": {"type": "string"},
                "fileSizeMB": {"type": "number"},
                "durationMinutes": {"type": "integer"}
            }
        },
        "model.BookResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "borrowed": {"type": "boolean"},
                "type": {"type": "string"},
                "fileFormat": {"type": "string"},
                "fileSizeMB": {"type": "number"},
                "durationMinutes": {"type": "integer"},
                "publicationYear": {"type": "integer"}
            }
        },
        "model.BookEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "book": {"$ref": "#/definitions/model.BookResponse"}
            }
        },
        "model.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "model.RootResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "bookCount": {"type": "integer"}
            }
        },
        "model.Stats": {
            "type": "object",
            "properties": {
                "libraryName": {"type": "string"},
                "total": {"type": "integer"},
                "available": {"type": "integer"},
                "borrowed": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Book Catalog API",
	Description:      "Book catalog with borrow/return tracking and ISBN metadata lookup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
