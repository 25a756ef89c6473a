package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Inspect status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Diagnostic is the result of Inspect.
type Diagnostic struct {
	Status     string        `json:"status"`
	Profile    string        `json:"profile"`
	Type       string        `json:"type"`
	Canonical  string        `json:"canonical,omitempty"`
	ByteLength int           `json:"byte_length"`
	SHA256     string        `json:"sha256,omitempty"`
	CID        string        `json:"cid,omitempty"`
	Errors     []ErrorRecord `json:"errors,omitempty"`
}

// OK reports whether canonicalization succeeded.
func (d Diagnostic) OK() bool {
	return d.Status == StatusOK
}

// ErrorRecord is the serializable form of a canonerr.Error.
type ErrorRecord struct {
	Kind    canonerr.Kind `json:"kind"`
	Path    string        `json:"path"`
	Message string        `json:"message"`
	Value   string        `json:"value,omitempty"`
}

// NewErrorRecord flattens err for display.
func NewErrorRecord(err *canonerr.Error) ErrorRecord {
	rec := ErrorRecord{
		Kind:    err.Kind,
		Path:    err.Path.String(),
		Message: err.Message,
	}
	if err.Value != nil {
		rec.Value = fmt.Sprintf("%v", err.Value)
	}
	return rec
}

// Inspect canonicalizes x and reports the outcome without failing. Errors,
// including panics from host conversion, are captured in the record.
func Inspect(x any, p profile.Profile) (d Diagnostic) {
	d = Diagnostic{Status: StatusError, Profile: p.Name, Type: fmt.Sprintf("%T", x)}
	defer func() {
		if r := recover(); r != nil {
			d.Status = StatusError
			d.Canonical, d.ByteLength, d.SHA256, d.CID = "", 0, "", ""
			d.Errors = []ErrorRecord{NewErrorRecord(canonerr.UnsupportedType(nil, "panic during canonicalization: %v", r))}
		}
	}()

	v, err := value.FromGo(x)
	if err != nil {
		d.Errors = []ErrorRecord{NewErrorRecord(asCanonError(err))}
		return d
	}
	d.Type = value.TypeName(v)

	out, err := Bytes(v, p)
	if err != nil {
		d.Errors = []ErrorRecord{NewErrorRecord(asCanonError(err))}
		return d
	}
	id, err := CID(out)
	if err != nil {
		d.Errors = []ErrorRecord{NewErrorRecord(canonerr.UnsupportedType(nil, "content identifier: %v", err))}
		return d
	}

	d.Status = StatusOK
	d.Canonical = string(out)
	d.ByteLength = len(out)
	d.SHA256 = ContentHash(out)
	d.CID = id
	return d
}

// ContentHash returns the lowercase hex SHA-256 of canonical bytes.
func ContentHash(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// CID returns the CIDv1 (raw codec, sha2-256 multihash) of canonical bytes.
func CID(canonical []byte) (string, error) {
	sum, err := multihash.Sum(canonical, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
