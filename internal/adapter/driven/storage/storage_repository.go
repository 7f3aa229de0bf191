package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// Esquemas de URI suportados.
const (
	SchemeS3  = "s3"
	SchemeGCS = "gs"
)

// ObjectStore é um backend de armazenamento de objetos (S3 ou GCS).
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, localPath, bucket, key string, metadata map[string]string) error
}

// ObjectURI é uma URI de objeto já decomposta.
type ObjectURI struct {
	Scheme string
	Bucket string
	Key    string
}

func (u ObjectURI) String() string {
	return fmt.Sprintf("%s://%s/%s", u.Scheme, u.Bucket, u.Key)
}

// ParseObjectURI decompõe s3://bucket/chave ou gs://bucket/chave.
func ParseObjectURI(uri string) (ObjectURI, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ObjectURI{}, fmt.Errorf("%w: %s", types.ErrUnsupportedScheme, uri)
	}
	scheme = strings.ToLower(scheme)
	if scheme != SchemeS3 && scheme != SchemeGCS {
		return ObjectURI{}, fmt.Errorf("%w: %s", types.ErrUnsupportedScheme, scheme)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if bucket == "" || key == "" {
		return ObjectURI{}, fmt.Errorf("invalid object URI (bucket and key required): %s", uri)
	}
	return ObjectURI{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

var _ repository.StorageRepository = (*StorageRepositoryImpl)(nil)

// StorageRepositoryImpl encaminha cada URI para o backend do seu esquema.
type StorageRepositoryImpl struct {
	stores map[string]ObjectStore
}

// NewStorageRepository cria o roteador com os backends S3 e GCS.
// Os clientes só são criados no primeiro uso.
func NewStorageRepository() *StorageRepositoryImpl {
	return NewStorageRepositoryWith(map[string]ObjectStore{
		SchemeS3:  NewS3Store(""),
		SchemeGCS: NewGCSStore(),
	})
}

// NewStorageRepositoryWith cria o roteador com backends explícitos.
func NewStorageRepositoryWith(stores map[string]ObjectStore) *StorageRepositoryImpl {
	return &StorageRepositoryImpl{stores: stores}
}

// Fetch baixa o objeto apontado pela URI.
func (r *StorageRepositoryImpl) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, store, err := r.resolve(uri)
	if err != nil {
		return nil, err
	}
	data, err := store.Get(ctx, u.Bucket, u.Key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	return data, nil
}

// Upload envia o arquivo local para a URI de destino.
func (r *StorageRepositoryImpl) Upload(ctx context.Context, localPath, uri string, metadata map[string]string) error {
	u, store, err := r.resolve(uri)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, localPath, u.Bucket, u.Key, metadata); err != nil {
		return fmt.Errorf("upload %s: %w", u, err)
	}
	return nil
}

// Close libera os clientes dos backends que precisam ser fechados.
func (r *StorageRepositoryImpl) Close() error {
	var errs []error
	for _, store := range r.stores {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (r *StorageRepositoryImpl) resolve(uri string) (ObjectURI, ObjectStore, error) {
	u, err := ParseObjectURI(uri)
	if err != nil {
		return ObjectURI{}, nil, err
	}
	store, ok := r.stores[u.Scheme]
	if !ok {
		return ObjectURI{}, nil, fmt.Errorf("%w: %s", types.ErrUnsupportedScheme, u.Scheme)
	}
	return u, store, nil
}

var contentTypes = map[string]string{
	".csv":     "text/csv; charset=utf-8",
	".json":    "application/json",
	".parquet": "application/vnd.apache.parquet",
	".html":    "text/html; charset=utf-8",
	".pdf":     "application/pdf",
}

func contentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
