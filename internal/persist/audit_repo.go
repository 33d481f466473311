package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ChunkRecord is one generated chunk in the audit trail.
type ChunkRecord struct {
	X, Y        int32
	Outcome     string
	Biome       string
	Debris      int
	GeneratedAt time.Time
}

// AuditRepo writes round and chunk generation records. Nothing reads them
// back at runtime.
type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// StartRound records a new round. Re-recording the same id is a no-op.
func (r *AuditRepo) StartRound(ctx context.Context, id uuid.UUID, seed int64, startedAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO generation_rounds (id, seed, started_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		pgUUID(id), seed, startedAt,
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// RecordChunks bulk-copies a batch of chunk records for one round.
func (r *AuditRepo) RecordChunks(ctx context.Context, round uuid.UUID, recs []ChunkRecord) error {
	if len(recs) == 0 {
		return nil
	}
	rid := pgUUID(round)
	_, err := r.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"chunk_generations"},
		[]string{"round_id", "chunk_x", "chunk_y", "outcome", "biome", "debris", "generated_at"},
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			c := recs[i]
			return []any{rid, c.X, c.Y, c.Outcome, c.Biome, int32(c.Debris), c.GeneratedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy chunk records: %w", err)
	}
	return nil
}
