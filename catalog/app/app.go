package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/book-catalog/catalog/config"
	"github.com/Astemirdum/book-catalog/catalog/internal/events"
	"github.com/Astemirdum/book-catalog/catalog/internal/handler"
	"github.com/Astemirdum/book-catalog/catalog/internal/menu"
	"github.com/Astemirdum/book-catalog/catalog/internal/model"
	"github.com/Astemirdum/book-catalog/catalog/internal/repository"
	"github.com/Astemirdum/book-catalog/catalog/internal/server"
	"github.com/Astemirdum/book-catalog/catalog/internal/service"
	"github.com/Astemirdum/book-catalog/catalog/internal/service/openlibrary"
	"github.com/Astemirdum/book-catalog/catalog/migrations"
	"github.com/Astemirdum/book-catalog/pkg/display"
	"github.com/Astemirdum/book-catalog/pkg/kafka"
	"github.com/Astemirdum/book-catalog/pkg/logger"
	"github.com/Astemirdum/book-catalog/pkg/postgres"
	"github.com/Astemirdum/book-catalog/pkg/sqlite"
	"github.com/Astemirdum/book-catalog/pkg/validate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Run serves the REST API until SIGINT or SIGTERM.
func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, cfg, log); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

// Serve runs the HTTP server until ctx is done or the server fails.
func Serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	c, err := newCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.close()

	h := handler.New(c.svc, c.validator, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	return g.Wait()
}

// RunMenu drives the text menu over in and out until exit or end of input.
func RunMenu(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, opts ...display.Option) error {
	logCfg := cfg.Log
	// keep stderr quiet in the terminal unless a log file is configured
	if logCfg.Sink == "" && logCfg.LogLevel < zapcore.WarnLevel {
		logCfg.LogLevel = zapcore.WarnLevel
	}
	log := logger.NewLogger(logCfg, "catalog")
	defer log.Sync() //nolint:errcheck

	c, err := newCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.close()

	m := menu.New(c.svc, in, display.New(out, opts...), c.validator, log)
	return m.Run(ctx)
}

type catalog struct {
	svc       *service.Service
	validator *validate.CustomValidator
	repo      repository.Repository
	publisher events.Publisher
	log       *zap.Logger
}

func newCatalog(ctx context.Context, cfg *config.Config, log *zap.Logger) (*catalog, error) {
	repo, err := NewRepository(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher(cfg.Kafka, log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	lookup := openlibrary.NewClient(cfg.Metadata, log)
	svc, err := service.NewService(ctx, repo, lookup, publisher, cfg.LibraryName, log)
	if err != nil {
		_ = publisher.Close()
		_ = repo.Close()
		return nil, err
	}
	return &catalog{
		svc:       svc,
		validator: validate.NewCustomValidator(validate.WithConfig(cfg.Validate)),
		repo:      repo,
		publisher: publisher,
		log:       log,
	}, nil
}

func (c *catalog) close() {
	if err := c.publisher.Close(); err != nil {
		c.log.Warn("publisher close", zap.Error(err))
	}
	if err := c.repo.Close(); err != nil {
		c.log.Warn("repository close", zap.Error(err))
	}
}

// NewRepository opens the storage backend selected by cfg.Storage.Driver.
func NewRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, error) {
	switch cfg.Storage.Driver {
	case config.StorageFile:
		return repository.NewFileRepository(cfg.Storage.Path, log), nil
	case config.StorageSQLite:
		db, err := sqlite.NewSQLiteDB(ctx, cfg.Storage.Path, migrations.SQLite(), log)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite init")
		}
		return repository.NewSQLiteRepository(db, log), nil
	case config.StoragePostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.Postgres(), log)
		if err != nil {
			return nil, errors.Wrap(err, "db init")
		}
		return repository.NewPostgresRepository(db, log), nil
	case config.StorageMemory:
		return repository.NewMemoryRepository(model.Catalog{}), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg kafka.Config, log *zap.Logger) (events.Publisher, error) {
	if !cfg.Enabled() {
		return events.Nop{}, nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka.NewProducer")
	}
	log.Info("publishing catalog events", zap.Strings("brokers", cfg.Addrs), zap.String("topic", cfg.Topic))
	return events.NewPublisher(producer, cfg.Topic), nil
}
