package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/franks42/canonical-edn/canon"
)

// ErrNotFound is returned by Get when no form has the requested id.
var ErrNotFound = errors.New("form not found")

// Get returns the form with the given id.
// The stored bytes are re-hashed on read; a mismatch is reported as an error
// rather than returning corrupted content.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, profile, canonical, sha256, cid, byte_length
		FROM forms
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	if got := canon.ContentHash([]byte(rec.Canonical)); got != rec.SHA256 {
		return Record{}, fmt.Errorf("get %s: stored content hash %s does not match %s", id, rec.SHA256, got)
	}

	s.logger.Debug("form read", "id", id, "seq", rec.Seq)
	return rec, nil
}

// List returns stored forms, optionally restricted to one profile.
// Ordered by: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) List(ctx context.Context, profileName string) ([]Record, error) {
	query := `
		SELECT seq, id, profile, canonical, sha256, cid, byte_length
		FROM forms
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	args := []any{}
	if profileName != "" {
		query = `
		SELECT seq, id, profile, canonical, sha256, cid, byte_length
		FROM forms
		WHERE profile = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
		args = append(args, profileName)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}

	return records, nil
}

// FindByCID returns forms whose canonical bytes have the given CID.
func (s *Store) FindByCID(ctx context.Context, cid string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, profile, canonical, sha256, cid, byte_length
		FROM forms
		WHERE cid = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, cid)
	if err != nil {
		return nil, fmt.Errorf("query forms by cid: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var canonical []byte
	if err := sc.Scan(&rec.Seq, &rec.ID, &rec.Profile, &canonical, &rec.SHA256, &rec.CID, &rec.ByteLength); err != nil {
		return Record{}, err
	}
	rec.Canonical = string(canonical)
	return rec, nil
}
