package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/internal/reader"
	"github.com/franks42/canonical-edn/internal/sign"
	"github.com/franks42/canonical-edn/profile"
)

// SignOptions holds flags for the sign command.
type SignOptions struct {
	*RootOptions
	Alg     string
	HashAlg string
	SeedHex string
}

// SignResult is the JSON payload of the sign and verify commands.
type SignResult struct {
	Alg       string `json:"alg"`
	HashAlg   string `json:"hash"`
	Profile   string `json:"profile"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"` // canonical EDN of the signature map
	Verified  bool   `json:"verified,omitempty"`
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Sign a value's profile-bound canonical form",
		Long: `Sign the canonical bytes of {:canonical-edn/profile "<name>" :canonical-edn/value v}.

The key is derived from a 32-byte hex seed. The signature is printed as a
canonical EDN map that the verify command reads back.`,
		Example:       `  canonedn sign --seed $(openssl rand -hex 32) data.json > data.sig.edn`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Alg, "alg", sign.AlgEd25519, "signature algorithm (ed25519|dilithium3)")
	cmd.Flags().StringVar(&opts.HashAlg, "hash", sign.HashSHA256, "digest algorithm (sha256|sha3-256)")
	cmd.Flags().StringVar(&opts.SeedHex, "seed", "", "hex-encoded 32-byte key seed (required)")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func runSign(opts *SignOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(opts.SeedHex))
	if err != nil {
		return f.CommandError(ErrCodeSignature, fmt.Errorf("invalid seed: %w", err))
	}
	signer, err := sign.NewSigner(opts.Alg, seed)
	if err != nil {
		return f.CommandError(ErrCodeSignature, err)
	}
	v, _, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}

	sig, err := sign.Sign(v, p, opts.HashAlg, signer)
	if err != nil {
		return reportError(f, ErrCodeSignature, err)
	}
	f.log().Debug("signed", "alg", sig.Alg, "hash", sig.HashAlg, "profile", sig.Profile)

	text, err := canon.String(sig.Value(), profile.Rich)
	if err != nil {
		return f.CommandError(ErrCodeSignature, err)
	}
	return f.Success(text, newSignResult(sig, text, false))
}

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	SigPath string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Verify a signature produced by sign",
		Long: `Verify a signature map produced by the sign command against a value.

The value is re-canonicalized under --profile, which must match the profile
recorded in the signature. Exits 0 when the signature verifies and 1 when it
does not.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.SigPath, "sig", "", "path to the signature EDN file (required)")
	_ = cmd.MarkFlagRequired("sig")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	raw, err := os.ReadFile(opts.SigPath)
	if err != nil {
		return f.CommandError(ErrCodeReadFailed, err)
	}
	sigVal, err := reader.Read(raw)
	if err != nil {
		return f.CommandError(ErrCodeParseFailed, fmt.Errorf("signature %s: %w", opts.SigPath, err))
	}
	sig, err := sign.FromValue(sigVal)
	if err != nil {
		return f.CommandError(ErrCodeParseFailed, fmt.Errorf("signature %s: %w", opts.SigPath, err))
	}
	v, _, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}

	err = sign.Verify(v, p, sig)
	switch {
	case err == nil:
		return f.Success("✓ signature valid", newSignResult(sig, strings.TrimSpace(string(raw)), true))
	case errors.Is(err, sign.ErrInvalidSignature), errors.Is(err, sign.ErrProfileMismatch):
		if ferr := f.Failure("✗ "+err.Error(), newSignResult(sig, strings.TrimSpace(string(raw)), false), ErrCodeSignature, err.Error()); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "verification failed", err)
	default:
		return reportError(f, ErrCodeSignature, err)
	}
}

func newSignResult(sig sign.Signature, text string, verified bool) SignResult {
	return SignResult{
		Alg:       sig.Alg,
		HashAlg:   sig.HashAlg,
		Profile:   sig.Profile,
		PublicKey: hex.EncodeToString(sig.PublicKey),
		Signature: text,
		Verified:  verified,
	}
}
