package storage

import (
	"context"
	"io"
)

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// Archiver — долговременное хранилище финальных снапшотов комнат.
// Комната, ставшая исторической, выгружается сюда одним JSON-документом.
type Archiver interface {
	Put(ctx context.Context, key string, contentType string, reader io.Reader) (*PutResult, error)

	GetPublicURL(key string) string
}
