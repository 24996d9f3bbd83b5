package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FindingStore persists the pending-findings set in Postgres so
// corroboration survives restarts. The upsert makes Observe atomic:
// concurrent observations of the same id both count.
type FindingStore struct {
	db *pgxpool.Pool
}

func NewFindingStore(db *pgxpool.Pool) *FindingStore {
	return &FindingStore{db: db}
}

func (s *FindingStore) Observe(ctx context.Context, f *domain.Finding) (*domain.Finding, error) {
	refs, err := json.Marshal(f.EntityReferences)
	if err != nil {
		return nil, fmt.Errorf("marshal entity refs: %w", err)
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO pending_findings
		   (id, content, source, confidence, query_context, entity_refs,
		    verification_count, verified, first_seen, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, 1, $4 >= $8 AND 1 >= $7, $9, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   verification_count = pending_findings.verification_count + 1,
		   confidence = GREATEST(pending_findings.confidence, EXCLUDED.confidence),
		   last_seen = EXCLUDED.last_seen,
		   verified = pending_findings.verification_count + 1 >= $7
		     AND GREATEST(pending_findings.confidence, EXCLUDED.confidence) >= $8
		 RETURNING confidence, verification_count, verified, first_seen, last_seen`,
		f.ID, f.Content, f.Source, f.Confidence, f.QueryContext, refs,
		domain.VerificationThreshold, domain.FindingConfidenceThreshold, f.LastSeen,
	)

	stored := *f
	if err := row.Scan(&stored.Confidence, &stored.VerificationCount, &stored.Verified,
		&stored.FirstSeen, &stored.LastSeen); err != nil {
		return nil, fmt.Errorf("observe finding: %w", err)
	}
	return &stored, nil
}

func (s *FindingStore) ListPromotable(ctx context.Context) ([]domain.Finding, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, content, source, confidence, query_context, entity_refs,
		        verification_count, verified, first_seen, last_seen
		 FROM pending_findings
		 WHERE verified = true AND confidence >= $1
		 ORDER BY first_seen`,
		domain.FindingConfidenceThreshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var refs []byte
		if err := rows.Scan(&f.ID, &f.Content, &f.Source, &f.Confidence, &f.QueryContext,
			&refs, &f.VerificationCount, &f.Verified, &f.FirstSeen, &f.LastSeen); err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			if err := json.Unmarshal(refs, &f.EntityReferences); err != nil {
				return nil, fmt.Errorf("unmarshal entity refs: %w", err)
			}
		}
		f.Timestamp = f.FirstSeen
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (s *FindingStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM pending_findings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FindingStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM pending_findings`).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
