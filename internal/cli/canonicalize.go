package cli

import (
	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/canon"
)

// CanonOptions holds flags for the canon command.
type CanonOptions struct {
	*RootOptions
	BytesOut bool
}

// CanonResult is the JSON payload of the canon command.
type CanonResult struct {
	Profile   string `json:"profile"`
	Canonical string `json:"canonical"`
}

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canon [file]",
		Short: "Print the canonical form of a value",
		Long: `Read a value (EDN, JSON, YAML, or CUE) and print its canonical EDN text.

Reads stdin when no file is given. With --bytes-out the exact canonical
bytes are written with no trailing newline, suitable for piping into a hash
or signing tool.`,
		Example: `  canonedn canon data.json
  echo '{:b 2 :a 1}' | canonedn canon
  canonedn canon --profile portable --bytes-out data.edn | sha256sum`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanon(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.BytesOut, "bytes-out", false, "write raw canonical bytes without a trailing newline")

	return cmd
}

func runCanon(opts *CanonOptions, cmd *cobra.Command, args []string) error {
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
	f.log().Debug("canonicalized", "profile", p.Name, "bytes", len(out))

	if opts.BytesOut {
		if _, err := f.Writer.Write(out); err != nil {
			return f.CommandError(ErrCodeWriteFailed, err)
		}
		return nil
	}
	return f.Success(string(out), CanonResult{Profile: p.Name, Canonical: string(out)})
}

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Valid   bool               `json:"valid"`
	Profile string             `json:"profile"`
	Error   *canon.ErrorRecord `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Report the first reason a value cannot be canonicalized",
		Long: `Validate a value against the profile's type universe without printing it.

Exits 0 when the value canonicalizes and 1 with the first violation, located
by path, when it does not.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	v, in, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}
	f.VerboseLog("Validating %s (%s) under profile %s", in.Name, in.Format, p.Name)

	if ce := canon.Explain(v, p); ce != nil {
		rec := canon.NewErrorRecord(ce)
		text := "✗ " + ce.Error()
		if err := f.Failure(text, ValidateResult{Valid: false, Profile: p.Name, Error: &rec}, ErrCodeInvalidValue, ce.Error()); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "validation failed", ce)
	}

	return f.Success("✓ valid", ValidateResult{Valid: true, Profile: p.Name})
}
