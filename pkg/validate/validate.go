package validate

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	tagPubYear = "pubyear"
	tagTextLen = "textlen"
)

// Config holds the bounds used by the custom tags.
// YearMin is exclusive, YearMax inclusive. TextMaxLen 0 disables the cap.
type Config struct {
	YearMin    int `envconfig:"VALIDATE_YEAR_MIN" default:"1400"`
	YearMax    int `envconfig:"VALIDATE_YEAR_MAX" default:"2030"`
	TextMaxLen int `envconfig:"VALIDATE_TEXT_MAX_LEN" default:"0"`
}

func DefaultConfig() Config {
	return Config{YearMin: 1400, YearMax: 2030}
}

type Option func(*Config)

func WithConfig(c Config) Option {
	return func(cfg *Config) {
		*cfg = c
	}
}

func WithYearRange(minExclusive, maxInclusive int) Option {
	return func(cfg *Config) {
		cfg.YearMin, cfg.YearMax = minExclusive, maxInclusive
	}
}

func WithTextMaxLen(n int) Option {
	return func(cfg *Config) {
		cfg.TextMaxLen = n
	}
}

type CustomValidator struct {
	validator *validator.Validate
	cfg       Config
}

func NewCustomValidator(opts ...Option) *CustomValidator {
	cfg := DefaultConfig()
	for _, op := range opts {
		op(&cfg)
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	cv := &CustomValidator{validator: v, cfg: cfg}
	// registration only fails on empty tags or nil funcs
	_ = v.RegisterValidation(tagPubYear, cv.validatePubYear)
	_ = v.RegisterValidation(tagTextLen, cv.validateTextLen)
	return cv
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) Config() Config {
	return cv.cfg
}

func (cv *CustomValidator) validatePubYear(fl validator.FieldLevel) bool {
	y := int(fl.Field().Int())
	return y > cv.cfg.YearMin && y <= cv.cfg.YearMax
}

func (cv *CustomValidator) validateTextLen(fl validator.FieldLevel) bool {
	if cv.cfg.TextMaxLen <= 0 {
		return true
	}
	return utf8.RuneCountInString(fl.Field().String()) <= cv.cfg.TextMaxLen
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors flattens a validation failure into one entry per broken constraint.
// It returns nil when err does not come from the validator.
func (cv *CustomValidator) FieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: cv.message(fe),
		})
	}
	return out
}

func (cv *CustomValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case tagPubYear:
		return fmt.Sprintf("must be greater than %d and at most %d", cv.cfg.YearMin, cv.cfg.YearMax)
	case tagTextLen:
		return fmt.Sprintf("must be at most %d characters", cv.cfg.TextMaxLen)
	default:
		return "is invalid"
	}
}
