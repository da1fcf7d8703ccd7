package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
)

// ResultStore implements cache.Durable.
type ResultStore struct {
	db *sql.DB
}

// Load returns a live entry; missing and expired rows are cache.ErrNotFound.
func (r *ResultStore) Load(ctx context.Context, briefHash, candidateID string, now time.Time) (cache.Entry, error) {
	var (
		phase   string
		payload string
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT phase, payload, expires_at FROM result_cache
		 WHERE brief_hash = ? AND candidate_id = ? AND expires_at >= ?`,
		briefHash, candidateID, now.UnixMilli(),
	).Scan(&phase, &payload, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, cache.ErrNotFound
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("load result %s: %w", candidateID, err)
	}

	var result model.ScoredCandidate
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return cache.Entry{}, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	return cache.Entry{
		BriefHash:   briefHash,
		CandidateID: candidateID,
		Result:      result,
		Phase:       model.Phase(phase),
		ExpiresAt:   time.UnixMilli(expires),
	}, nil
}

// Store upserts an entry. Last write wins.
func (r *ResultStore) Store(ctx context.Context, e cache.Entry) error {
	payload, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", e.CandidateID, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO result_cache (brief_hash, candidate_id, phase, payload, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(brief_hash, candidate_id) DO UPDATE SET
		   phase = excluded.phase,
		   payload = excluded.payload,
		   expires_at = excluded.expires_at`,
		e.BriefHash, e.CandidateID, string(e.Phase), string(payload), e.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store result %s: %w", e.CandidateID, err)
	}
	return nil
}

// Purge deletes expired rows.
func (r *ResultStore) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM result_cache WHERE expires_at < ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge results: %w", err)
	}
	return int(n), nil
}
