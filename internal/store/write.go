package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/profile"
)

// DomainContent prefixes content-addressed form identities.
// Version suffix enables future algorithm migration.
const DomainContent = "canonical-edn/content/v1"

// Record is one stored canonical form.
type Record struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Profile    string `json:"profile"`
	Canonical  string `json:"canonical"`
	SHA256     string `json:"sha256"`
	CID        string `json:"cid"`
	ByteLength int    `json:"byte_length"`
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FormID computes the identity of x stored under p.
func FormID(x any, p profile.Profile) (string, error) {
	bound, err := canon.BoundBytes(x, p)
	if err != nil {
		return "", fmt.Errorf("FormID: failed to canonicalize: %w", err)
	}
	return hashWithDomain(DomainContent, bound), nil
}

// Put canonicalizes x under p and stores it.
// Uses ON CONFLICT(id) DO NOTHING for idempotency; the returned record is
// always the stored one, so a repeated Put reports the original Seq.
func (s *Store) Put(ctx context.Context, x any, p profile.Profile) (Record, error) {
	out, err := canon.Bytes(x, p)
	if err != nil {
		return Record{}, fmt.Errorf("put: %w", err)
	}
	id, err := FormID(x, p)
	if err != nil {
		return Record{}, fmt.Errorf("put: %w", err)
	}
	cid, err := canon.CID(out)
	if err != nil {
		return Record{}, fmt.Errorf("put: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO forms
		(id, profile, canonical, sha256, cid, byte_length)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		p.Name,
		out,
		canon.ContentHash(out),
		cid,
		len(out),
	)
	if err != nil {
		return Record{}, fmt.Errorf("put: %w", err)
	}

	if err := s.logInsert(res, id, p.Name, len(out)); err != nil {
		return Record{}, fmt.Errorf("put: %w", err)
	}

	return s.Get(ctx, id)
}

// logInsert reports whether the insert created a row or found one already
// stored under id.
func (s *Store) logInsert(res sql.Result, id, profileName string, size int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		s.logger.Debug("form already stored", "id", id, "profile", profileName)
	} else {
		s.logger.Debug("form stored", "id", id, "profile", profileName, "bytes", size)
	}
	return nil
}
