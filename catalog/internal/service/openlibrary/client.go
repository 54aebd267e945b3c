package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Astemirdum/book-catalog/catalog/internal/errs"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	cb "github.com/Astemirdum/book-catalog/pkg/circuit_breaker"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://openlibrary.org"

type Config struct {
	BaseURL       string        `envconfig:"METADATA_BASE_URL" default:"https://openlibrary.org"`
	Timeout       time.Duration `envconfig:"METADATA_TIMEOUT" default:"15s"`
	AuthorTimeout time.Duration `envconfig:"METADATA_AUTHOR_TIMEOUT" default:"10s"`
	// StrictAuthorResolution fails the lookup when the author cannot be resolved.
	// Otherwise PlaceholderAuthor is used.
	StrictAuthorResolution bool    `envconfig:"METADATA_STRICT_AUTHOR" default:"true"`
	PlaceholderAuthor      string  `envconfig:"METADATA_PLACEHOLDER_AUTHOR" default:"Unknown Author"`
	UserAgent              string  `envconfig:"METADATA_USER_AGENT" default:"book-catalog/1.0"`
	RPS                    float64 `envconfig:"METADATA_RPS" default:"2"`

	CBRecordLength int           `envconfig:"METADATA_CB_RECORDS" default:"10"`
	CBTimeout      time.Duration `envconfig:"METADATA_CB_TIMEOUT" default:"30s"`
	CBPercentile   float64       `envconfig:"METADATA_CB_PERCENTILE" default:"0.5"`
	CBRecovery     int           `envconfig:"METADATA_CB_RECOVERY" default:"2"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:                DefaultBaseURL,
		Timeout:                15 * time.Second,
		AuthorTimeout:          10 * time.Second,
		StrictAuthorResolution: true,
		PlaceholderAuthor:      "Unknown Author",
		UserAgent:              "book-catalog/1.0",
		RPS:                    2,
		CBRecordLength:         10,
		CBTimeout:              30 * time.Second,
		CBPercentile:           0.5,
		CBRecovery:             2,
	}
}

// Client resolves ISBNs against the Open Library JSON API in two steps:
// the edition by ISBN, then the first referenced author.
type Client struct {
	log        *zap.Logger
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	breaker    cb.CircuitBreaker
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		log: log.Named("openlibrary"),
		// per-request deadlines come from cfg timeouts; redirects are followed by default
		httpClient: &http.Client{},
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    cb.New(cfg.CBRecordLength, cfg.CBTimeout, cfg.CBPercentile, cfg.CBRecovery),
	}
}

type edition struct {
	Title   string `json:"title"`
	Authors []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

type author struct {
	Name string `json:"name"`
}

// Lookup returns normalized metadata. Failures wrap one of errs.ErrMetadataNotFound,
// errs.ErrMetadataService, errs.ErrMetadataIncomplete or errs.ErrConnectivity.
func (c *Client) Lookup(ctx context.Context, isbn string) (model.Metadata, error) {
	var (
		meta   model.Metadata
		result error
	)
	err := c.breaker.Call(func() error {
		meta, result = c.lookup(ctx, isbn)
		// only transport and upstream failures count against the breaker
		if errors.Is(result, errs.ErrConnectivity) || errors.Is(result, errs.ErrMetadataService) {
			return result
		}
		return nil
	})
	if errors.Is(err, cb.ErrOpenCB) {
		return model.Metadata{}, fmt.Errorf("%w: %w", errs.ErrMetadataService, err)
	}
	if result != nil {
		return model.Metadata{}, result
	}
	return meta, nil
}

func (c *Client) lookup(ctx context.Context, isbn string) (model.Metadata, error) {
	var ed edition
	status, err := c.getJSON(ctx, c.cfg.Timeout, "/isbn/"+url.PathEscape(isbn)+".json", &ed)
	if err != nil {
		return model.Metadata{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return model.Metadata{}, errors.Wrapf(errs.ErrMetadataNotFound, "isbn %s", isbn)
	case status != http.StatusOK:
		return model.Metadata{}, errors.Wrapf(errs.ErrMetadataService, "HTTP %d", status)
	}
	if strings.TrimSpace(ed.Title) == "" {
		return model.Metadata{}, errors.Wrap(errs.ErrMetadataIncomplete, "title missing")
	}

	name, err := c.resolveAuthor(ctx, ed)
	if err != nil {
		if c.cfg.StrictAuthorResolution || ctx.Err() != nil {
			return model.Metadata{}, err
		}
		c.log.Warn("author unresolved, using placeholder", zap.String("isbn", isbn), zap.Error(err))
		name = c.cfg.PlaceholderAuthor
	}

	c.log.Debug("metadata resolved", zap.String("isbn", isbn), zap.String("title", ed.Title))
	return model.Metadata{Title: ed.Title, Author: name, ISBN: isbn}, nil
}

func (c *Client) resolveAuthor(ctx context.Context, ed edition) (string, error) {
	if len(ed.Authors) == 0 || ed.Authors[0].Key == "" {
		return "", errors.Wrap(errs.ErrMetadataIncomplete, "no author reference")
	}
	key := ed.Authors[0].Key
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	var a author
	status, err := c.getJSON(ctx, c.cfg.AuthorTimeout, key+".json", &a)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Wrapf(errs.ErrMetadataService, "author HTTP %d", status)
	}
	if strings.TrimSpace(a.Name) == "" {
		return "", errors.Wrap(errs.ErrMetadataIncomplete, "author name missing")
	}
	return a.Name, nil
}

// getJSON decodes the body into target only for 200 responses.
func (c *Client) getJSON(ctx context.Context, timeout time.Duration, path string, target any) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrConnectivity, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, http.NoBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w: %w", errs.ErrConnectivity, err)
		}
		return 0, fmt.Errorf("%w: decode: %w", errs.ErrMetadataService, err)
	}
	return resp.StatusCode, nil
}
