package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlobNotFound is returned when a requested blob does not exist.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidKey is returned when a key is empty, absolute or escapes the
	// storage root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// BlobStore stores and retrieves binary blobs, keyed by a relative
// slash-separated path. The main payloads are archived CSV import files
// kept around so an import can be audited after the fact.
type BlobStore interface {
	// Put stores the reader's content under the key, replacing any
	// existing blob.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Get retrieves the blob stored under the key. The caller closes the
	// returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the blob stored under the key.
	Remove(ctx context.Context, key string) error

	// Exists checks whether a blob is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL for fetching the blob. S3 returns a presigned URL;
	// local storage returns a file:// URL.
	URL(ctx context.Context, key string) (string, error)
}

// Config selects and parameterizes a blob store backend.
type Config struct {
	// Backend is "local" or "s3".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// BaseDir is the root directory for the local backend.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`

	// Bucket and Region configure the s3 backend.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Region string `yaml:"region" mapstructure:"region"`

	// PresignExpiry bounds how long s3 download URLs stay valid.
	PresignExpiry time.Duration `yaml:"presign_expiry" mapstructure:"presign_expiry"`
}

// New creates a BlobStore for the configured backend.
func New(cfg Config) (BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "local":
		return NewLocalStore(cfg.BaseDir)

	case "s3":
		store, err := NewS3Store(cfg.Bucket, cfg.Region)
		if err != nil {
			return nil, err
		}
		if cfg.PresignExpiry > 0 {
			store.presignExpiry = cfg.PresignExpiry
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// ImportArchiveKey builds the storage key for an archived CSV import file.
func ImportArchiveKey(regressionSetID uuid.UUID, fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		name = "import.csv"
	}
	return fmt.Sprintf("imports/%s/%d-%s", regressionSetID, time.Now().UnixNano(), name)
}
