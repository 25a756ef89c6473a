// Package sign produces and checks signatures over canonical bytes.
//
// The signed message is always the canonical encoding of the profile-binding
// envelope {:canonical-edn/profile "<name>" :canonical-edn/value v}, so a
// signature made under one profile never verifies under another.
package sign

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/profile"
)

// Signature algorithms.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Digest algorithms.
const (
	HashSHA256  = "sha256"
	HashSHA3256 = "sha3-256"
)

var (
	// ErrInvalidSignature is returned when a signature does not verify.
	ErrInvalidSignature = errors.New("signature invalid")
	// ErrProfileMismatch is returned when a signature was made under a
	// different profile than the one used to verify.
	ErrProfileMismatch = errors.New("signature profile mismatch")
)

// Signer signs digests with one private key.
type Signer interface {
	Alg() string
	PublicKey() []byte
	Sign(digest []byte) ([]byte, error)
}

// Signature is a detached signature over a profile-bound value.
type Signature struct {
	Alg       string
	HashAlg   string
	Profile   string
	PublicKey []byte
	Sig       []byte
}

// Digest hashes message with hashAlg.
func Digest(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA3256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// Sign canonicalizes x bound to p and signs its hashAlg digest.
func Sign(x any, p profile.Profile, hashAlg string, s Signer) (Signature, error) {
	msg, err := canon.BoundBytes(x, p)
	if err != nil {
		return Signature{}, fmt.Errorf("canonicalize: %w", err)
	}
	digest, err := Digest(hashAlg, msg)
	if err != nil {
		return Signature{}, err
	}
	sig, err := s.Sign(digest)
	if err != nil {
		return Signature{}, fmt.Errorf("sign %s: %w", s.Alg(), err)
	}
	return Signature{
		Alg:       s.Alg(),
		HashAlg:   hashAlg,
		Profile:   p.Name,
		PublicKey: s.PublicKey(),
		Sig:       sig,
	}, nil
}

// Verify checks sig against x canonicalized under p.
func Verify(x any, p profile.Profile, sig Signature) error {
	if sig.Profile != p.Name {
		return fmt.Errorf("%w: signed under %q, verifying under %q", ErrProfileMismatch, sig.Profile, p.Name)
	}
	msg, err := canon.BoundBytes(x, p)
	if err != nil {
		return fmt.Errorf("canonicalize: %w", err)
	}
	digest, err := Digest(sig.HashAlg, msg)
	if err != nil {
		return err
	}

	switch sig.Alg {
	case AlgEd25519:
		if len(sig.PublicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("invalid ed25519 public key length %d", len(sig.PublicKey))
		}
		if len(sig.Sig) != ed25519.SignatureSize {
			return fmt.Errorf("invalid ed25519 signature length %d", len(sig.Sig))
		}
		if !ed25519.Verify(ed25519.PublicKey(sig.PublicKey), digest, sig.Sig) {
			return ErrInvalidSignature
		}
		return nil
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(sig.PublicKey); err != nil {
			return fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
		if len(sig.Sig) != mode3.SignatureSize {
			return fmt.Errorf("invalid dilithium3 signature length %d", len(sig.Sig))
		}
		if !mode3.Verify(&pk, digest, sig.Sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("unsupported signature algorithm: %q", sig.Alg)
	}
}

// Ed25519Signer signs with an ed25519 private key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519FromSeed derives an ed25519 signer from a 32-byte seed.
func NewEd25519FromSeed(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Alg() string { return AlgEd25519 }

func (s *Ed25519Signer) PublicKey() []byte {
	return []byte(s.key.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(digest []byte) ([]byte, error) {
	return ed25519.Sign(s.key, digest), nil
}

// Dilithium3Signer signs with a post-quantum Dilithium3 key.
type Dilithium3Signer struct {
	pk *mode3.PublicKey
	sk *mode3.PrivateKey
}

// GenerateDilithium3 creates a signer from fresh randomness.
func GenerateDilithium3(rand io.Reader) (*Dilithium3Signer, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("generate dilithium3 key: %w", err)
	}
	return &Dilithium3Signer{pk: pk, sk: sk}, nil
}

// NewDilithium3FromSeed derives a signer deterministically from a 32-byte seed.
func NewDilithium3FromSeed(seed []byte) (*Dilithium3Signer, error) {
	var s [32]byte
	if len(seed) != len(s) {
		return nil, fmt.Errorf("dilithium3 seed must be %d bytes, got %d", len(s), len(seed))
	}
	copy(s[:], seed)
	pk, sk := mode3.NewKeyFromSeed(&s)
	return &Dilithium3Signer{pk: pk, sk: sk}, nil
}

func (s *Dilithium3Signer) Alg() string { return AlgDilithium3 }

func (s *Dilithium3Signer) PublicKey() []byte { return s.pk.Bytes() }

func (s *Dilithium3Signer) Sign(digest []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.sk, digest, sig)
	return sig, nil
}

// NewSigner derives a signer for alg from a 32-byte seed.
func NewSigner(alg string, seed []byte) (Signer, error) {
	switch alg {
	case AlgEd25519:
		return NewEd25519FromSeed(seed)
	case AlgDilithium3:
		return NewDilithium3FromSeed(seed)
	default:
		return nil, fmt.Errorf("unsupported signature algorithm: %q", alg)
	}
}
