package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

const gcsUploadTimeout = 2 * time.Minute

// GCSStore acessa objetos no Google Cloud Storage usando Application Default Credentials.
type GCSStore struct {
	client *storage.Client
	mu     sync.Mutex
}

// NewGCSStore cria o backend GCS. O cliente é criado no primeiro uso.
func NewGCSStore() *GCSStore {
	return &GCSStore{}
}

func (g *GCSStore) getClient(ctx context.Context) (*storage.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	g.client = client
	return client, nil
}

// Get baixa o objeto completo.
func (g *GCSStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	rc, err := client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader gs://%s/%s: %w", bucket, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read GCS object gs://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Put envia o arquivo local com os metadados informados.
func (g *GCSStore) Put(ctx context.Context, localPath, bucket, key string, metadata map[string]string) error {
	client, err := g.getClient(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", localPath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, gcsUploadTimeout)
	defer cancel()

	w := client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeFor(key)
	w.Metadata = metadata

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	// Close finaliza o upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Close libera o cliente, se criado.
func (g *GCSStore) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
