package similarity

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions is the embedding length used when none is configured.
const DefaultDimensions = 512

// Embedder produces vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dimensions() int
	Name() string
}

// HashEmbedder is a deterministic local embedder based on feature hashing
// of word unigrams and bigrams.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder with the given dimension count.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Dimensions returns the vector length.
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Name identifies the embedding model.
func (h *HashEmbedder) Name() string { return "hash-xxh64" }

// Embed hashes each feature into a bucket with a hash-derived sign and
// L2-normalizes the result.
func (h *HashEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil, ErrEmptyText
	}

	v := make(Vector, h.dims)
	add := func(feature string, weight float32) {
		sum := xxhash.Sum64String(feature)
		idx := sum % uint64(h.dims)
		if sum>>63 == 1 {
			weight = -weight
		}
		v[idx] += weight
	}
	for i, w := range words {
		add(w, 1)
		if i > 0 {
			add(words[i-1]+" "+w, 0.5)
		}
	}
	return v.Normalize(), nil
}
