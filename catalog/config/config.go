package config

import (
	"time"

	"github.com/Astemirdum/book-catalog/catalog/internal/service/openlibrary"
	"github.com/Astemirdum/book-catalog/pkg/kafka"
	"github.com/Astemirdum/book-catalog/pkg/logger"
	"github.com/Astemirdum/book-catalog/pkg/postgres"
	"github.com/Astemirdum/book-catalog/pkg/validate"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"30s"`
}

type Storage struct {
	// Driver is one of file, sqlite, postgres, memory.
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER" default:"sqlite"`
	// Path is the data file for file (.json, .yaml) and sqlite drivers.
	Path string `yaml:"path" envconfig:"STORAGE_PATH" default:"library.db"`
}

type Config struct {
	Server      HTTPServer         `yaml:"server"`
	LibraryName string             `yaml:"libraryName" envconfig:"LIBRARY_NAME" default:"City Library"`
	Storage     Storage            `yaml:"storage"`
	Database    postgres.DB        `yaml:"db"`
	Metadata    openlibrary.Config `yaml:"metadata"`
	Validate    validate.Config    `yaml:"validate"`
	Kafka       kafka.Config       `yaml:"kafka"`
	Log         logger.Log         `yaml:"log"`
}

// Load reads the environment and then applies ops, so options override env values.
func Load(ops ...Option) (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.Wrap(err, "envconfig")
	}
	for _, op := range ops {
		op(&config)
	}
	switch config.Storage.Driver {
	case StorageFile, StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return nil, errors.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
	return &config, nil
}
