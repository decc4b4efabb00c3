package memory

import (
	"time"

	"clinidoc-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// ExtractionCache keeps recent extraction results keyed by document
// content hash, so re-uploading the same PDF skips the parse entirely.
type ExtractionCache struct {
	cache *cache.Cache
}

func NewExtractionCache() *ExtractionCache {
	// Default expiration of 1 hour, purge expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ExtractionCache{
		cache: c,
	}
}

func (r *ExtractionCache) Save(contentHash string, res *dto.ExtractDocumentResponse) {
	r.cache.Set(contentHash, res, cache.DefaultExpiration)
}

func (r *ExtractionCache) Get(contentHash string) (*dto.ExtractDocumentResponse, bool) {
	if x, found := r.cache.Get(contentHash); found {
		return x.(*dto.ExtractDocumentResponse), true
	}
	return nil, false
}

func (r *ExtractionCache) Delete(contentHash string) {
	r.cache.Delete(contentHash)
}
