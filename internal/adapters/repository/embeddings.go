package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/briefmatch/internal/domain/similarity"
)

// EmbeddingStore implements similarity.Store.
type EmbeddingStore struct {
	db *sql.DB
}

// Get returns the persisted vector for a candidate.
func (e *EmbeddingStore) Get(ctx context.Context, candidateID string) (similarity.StoredEmbedding, error) {
	var (
		blob      []byte
		dims      int
		out       similarity.StoredEmbedding
		updatedAt int64
	)
	err := e.db.QueryRowContext(ctx,
		`SELECT vector, dims, content_hash, model, updated_at
		 FROM candidate_embeddings WHERE candidate_id = ?`, candidateID,
	).Scan(&blob, &dims, &out.Hash, &out.Model, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return similarity.StoredEmbedding{}, fmt.Errorf("%w: %s", similarity.ErrNotFound, candidateID)
	}
	if err != nil {
		return similarity.StoredEmbedding{}, fmt.Errorf("load embedding %s: %w", candidateID, err)
	}

	v, err := decodeVector(blob)
	if err != nil {
		return similarity.StoredEmbedding{}, err
	}
	if len(v) != dims {
		return similarity.StoredEmbedding{}, fmt.Errorf("%w: %d values, %d dims", ErrCodec, len(v), dims)
	}
	out.CandidateID = candidateID
	out.Vector = v
	out.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return out, nil
}

// Put inserts or replaces a candidate's vector. Last write wins.
func (e *EmbeddingStore) Put(ctx context.Context, s similarity.StoredEmbedding) error {
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO candidate_embeddings (candidate_id, vector, dims, content_hash, model, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(candidate_id) DO UPDATE SET
		   vector = excluded.vector,
		   dims = excluded.dims,
		   content_hash = excluded.content_hash,
		   model = excluded.model,
		   updated_at = excluded.updated_at`,
		s.CandidateID, encodeVector(s.Vector), len(s.Vector), s.Hash, s.Model, s.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store embedding %s: %w", s.CandidateID, err)
	}
	return nil
}
