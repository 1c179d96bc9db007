package library

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/windeq/log"
)

// documentCache holds decoded documents keyed by format and content hash.
// Cached Documents are shared and must not be modified.
var documentCache sync.Map

type cacheKey struct {
	format Format
	sum    uint64
	size   int
}

// decodeCached decodes data, reusing a prior result for identical content.
func decodeCached(
	ctx context.Context,
	lg log.Logger,
	format Format,
	data []byte,
) (Document, error) {
	key := cacheKey{format: format, sum: xxh3.Hash(data), size: len(data)}

	if v, ok := documentCache.Load(key); ok {
		lg.TraceContext(ctx, "document cache hit",
			slog.Uint64("hash", key.sum),
			slog.Int("bytes", key.size),
		)

		return v.(Document), nil
	}

	doc, err := Decode(format, data)
	if err != nil {
		return nil, err
	}

	v, _ := documentCache.LoadOrStore(key, doc)

	return v.(Document), nil
}

// PurgeCache discards all cached documents.
func PurgeCache() { documentCache.Clear() }
