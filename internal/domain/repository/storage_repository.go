package repository

import "context"

// StorageRepository acessa objetos remotos endereçados por URI (s3://, gs://).
type StorageRepository interface {
	// Fetch baixa o conteúdo completo do objeto.
	Fetch(ctx context.Context, uri string) ([]byte, error)
	// Upload envia um arquivo local para a URI de destino.
	Upload(ctx context.Context, localPath, uri string, metadata map[string]string) error
}
