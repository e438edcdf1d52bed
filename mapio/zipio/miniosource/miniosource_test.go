package miniosource

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid with credentials",
			cfg: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "maps",
				Object:    "archives/4c-arena.wz",
				AccessKey: "access",
				SecretKey: "secret",
			},
		},
		{
			name: "valid with client",
			cfg: Config{
				Bucket: "maps",
				Object: "archives/4c-arena.wz",
				Client: client,
			},
		},
		{
			name: "missing bucket",
			cfg: Config{
				Endpoint:  "localhost:9000",
				Object:    "archives/4c-arena.wz",
				AccessKey: "access",
				SecretKey: "secret",
			},
			wantErr: "bucket is required",
		},
		{
			name: "missing object key",
			cfg: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "maps",
				AccessKey: "access",
				SecretKey: "secret",
			},
			wantErr: "object key is required",
		},
		{
			name: "missing endpoint without client",
			cfg: Config{
				Bucket:    "maps",
				Object:    "archives/4c-arena.wz",
				AccessKey: "access",
				SecretKey: "secret",
			},
			wantErr: "endpoint is required",
		},
		{
			name: "missing access key without client",
			cfg: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "maps",
				Object:    "archives/4c-arena.wz",
				SecretKey: "secret",
			},
			wantErr: "access key is required",
		},
		{
			name: "missing secret key without client",
			cfg: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "maps",
				Object:    "archives/4c-arena.wz",
				AccessKey: "access",
			},
			wantErr: "secret key is required",
		},
		{
			name: "client skips credential checks",
			cfg: Config{
				Bucket: "maps",
				Object: "archives/4c-arena.wz",
				Client: client,
				// Endpoint and keys deliberately absent.
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpenInvalidConfig(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Nil(t, s)
}
