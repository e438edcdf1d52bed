// Package miniosource provides a mapio.SourceReadProvider over an object in
// MinIO/S3-compatible storage, so archives can be opened straight from a
// bucket via zipio.OpenSource without downloading them first. Reads are
// served through HTTP range requests on the underlying object.
package miniosource

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// Config holds the connection and object coordinates.
type Config struct {
	// Endpoint is the MinIO server URL (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the S3 bucket name
	Bucket string

	// Object is the key of the archive object inside the bucket
	Object string

	// AccessKey is the access key ID for authentication
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client
}

// validate checks if the configuration is valid.
// Either Client OR (Endpoint + AccessKey + SecretKey) must be provided, plus
// the bucket and object coordinates in all cases.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Object == "" {
		return fmt.Errorf("object key is required")
	}

	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when client is not provided")
	}

	return nil
}

// Source adapts one remote object to the mapio.SourceReadProvider contract.
// A Source has a single logical owner; Close must be called once the opened
// archive no longer needs it.
type Source struct {
	obj *minio.Object

	size       int64
	hasSize    bool
	modTime    time.Time
	hasModTime bool
}

// Compile-time interface check.
var _ mapio.SourceReadProvider = (*Source)(nil)

// Open connects to the configured endpoint and opens the object for reading.
// The object's size and modification time are captured up front so the
// archive backend can size the central-directory scan.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	obj, err := client.GetObject(ctx, cfg.Bucket, cfg.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", cfg.Object, err)
	}

	s := &Source{obj: obj}
	if info, err := obj.Stat(); err == nil {
		s.size = info.Size
		s.hasSize = true
		if !info.LastModified.IsZero() {
			s.modTime = info.LastModified
			s.hasModTime = true
		}
	}
	return s, nil
}

// Seek positions the source at the absolute offset.
func (s *Source) Seek(offset int64) error {
	_, err := s.obj.Seek(offset, io.SeekStart)
	return err
}

// Tell returns the current absolute offset.
func (s *Source) Tell() (int64, error) {
	return s.obj.Seek(0, io.SeekCurrent)
}

// ReadBytes reads up to len(p) bytes at the current offset. End of object is
// reported as a zero-length read, not an error.
func (s *Source) ReadBytes(p []byte) (int, error) {
	n, err := s.obj.Read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// ModTime returns the object's last-modified time, if the stat succeeded.
func (s *Source) ModTime() (time.Time, bool) {
	return s.modTime, s.hasModTime
}

// FileSize returns the object's total size, if the stat succeeded.
func (s *Source) FileSize() (int64, bool) {
	return s.size, s.hasSize
}

// Close releases the underlying object reader.
func (s *Source) Close() error {
	return s.obj.Close()
}
