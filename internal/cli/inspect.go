package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/internal/reader"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show a diagnostic record for a value",
		Long: `Canonicalize a value and print a diagnostic record: status, type,
canonical text, byte length, SHA-256, CIDv1, and any errors.

Always exits 0 once the input is decoded; the record's status tells whether
canonicalization succeeded.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	v, _, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}

	d := canon.Inspect(v, p)
	return f.Success(formatDiagnostic(d), d)
}

func formatDiagnostic(d canon.Diagnostic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "status:    %s\n", d.Status)
	fmt.Fprintf(&sb, "profile:   %s\n", d.Profile)
	fmt.Fprintf(&sb, "type:      %s\n", d.Type)
	if d.OK() {
		fmt.Fprintf(&sb, "canonical: %s\n", d.Canonical)
		fmt.Fprintf(&sb, "bytes:     %d\n", d.ByteLength)
		fmt.Fprintf(&sb, "sha256:    %s\n", d.SHA256)
		fmt.Fprintf(&sb, "cid:       %s", d.CID)
	}
	for i, e := range d.Errors {
		if i > 0 || d.OK() {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "error:     %s at %s: %s", e.Kind, e.Path, e.Message)
	}
	return sb.String()
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Canonical bool   `json:"canonical"`
	Profile   string `json:"profile"`
	Expected  string `json:"expected,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check whether EDN text is already in canonical form",
		Long: `Read EDN text and check that re-canonicalizing it reproduces the same
bytes. A single trailing newline is ignored so files written by editors can
be checked directly.

Exits 0 when the text is canonical and 1 otherwise.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	in, err := opts.readInput(cmd, args)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return f.CommandError(code, err)
	}

	text := strings.TrimSuffix(string(in.Data), "\n")
	if canon.IsCanonicalForm(text, p) {
		return f.Success("✓ canonical", CheckResult{Canonical: true, Profile: p.Name})
	}

	result := CheckResult{Canonical: false, Profile: p.Name}
	if v, err := reader.ReadString(text); err == nil {
		if out, err := canon.String(v, p); err == nil {
			result.Expected = out
		}
	}
	msg := "✗ not canonical"
	if result.Expected != "" {
		msg += "\nexpected: " + result.Expected
	}
	if err := f.Failure(msg, result, ErrCodeInvalidValue, "text is not in canonical form"); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "text is not in canonical form")
}

// HashResult is the JSON payload of the hash command.
type HashResult struct {
	Profile    string `json:"profile"`
	SHA256     string `json:"sha256"`
	CID        string `json:"cid"`
	ByteLength int    `json:"byte_length"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hash [file]",
		Short:         "Print the SHA-256 and CIDv1 of a value's canonical bytes",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runHash(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	v, _, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}

	out, err := canon.Bytes(v, p)
	if err != nil {
		return reportError(f, ErrCodeInvalidValue, err)
	}
	id, err := canon.CID(out)
	if err != nil {
		return f.CommandError(ErrCodeGeneric, err)
	}

	res := HashResult{Profile: p.Name, SHA256: canon.ContentHash(out), CID: id, ByteLength: len(out)}
	return f.Success(res.SHA256+"  "+res.CID, res)
}
