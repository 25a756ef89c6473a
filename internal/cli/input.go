package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/ingest"
	"github.com/franks42/canonical-edn/value"
)

// stdinName is the conventional argument for reading standard input.
const stdinName = "-"

// input is one raw document read from a file or stdin.
type input struct {
	Name   string
	Data   []byte
	Format ingest.Format
}

// readInput reads the file named by args[0], or stdin when args is empty or
// "-". The format comes from --from, else the file extension, else EDN.
func (o *RootOptions) readInput(cmd *cobra.Command, args []string) (input, error) {
	in := input{Name: stdinName}
	if len(args) > 0 {
		in.Name = args[0]
	}

	var err error
	if in.Name == stdinName {
		in.Data, err = io.ReadAll(cmd.InOrStdin())
		in.Format = ingest.FormatEDN
	} else {
		in.Data, err = os.ReadFile(in.Name)
		in.Format = ingest.FormatForPath(in.Name)
	}
	if err != nil {
		return input{}, fmt.Errorf("read %s: %w", in.Name, err)
	}

	if o.From != "" {
		in.Format, err = ingest.ParseFormat(o.From)
		if err != nil {
			return input{}, err
		}
	}
	return in, nil
}

// loadValue reads and decodes the command input, reporting failures through
// f. Decoding errors from the canonical taxonomy (for example an integer
// overflow in JSON) are reported as invalid values with ExitFailure; all
// other failures are command errors.
func (o *RootOptions) loadValue(cmd *cobra.Command, f *OutputFormatter, args []string) (value.Value, input, error) {
	in, err := o.readInput(cmd, args)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, input{}, f.CommandError(code, err)
	}
	f.log().Debug("input read", "name", in.Name, "format", in.Format, "bytes", len(in.Data))

	v, err := ingest.Decode(in.Format, in.Data, o.ingestOptions())
	if err != nil {
		var ce *canonerr.Error
		if errors.As(err, &ce) {
			return nil, in, reportInvalid(f, ce)
		}
		return nil, in, f.CommandError(ErrCodeParseFailed, err)
	}
	return v, in, nil
}

// reportInvalid prints a canonicalization error and returns ExitFailure.
func reportInvalid(f *OutputFormatter, ce *canonerr.Error) error {
	_ = f.Error(ErrCodeInvalidValue, ce.Error(), canon.NewErrorRecord(ce))
	return WrapExitError(ExitFailure, ErrCodeInvalidValue, ce)
}

// reportError routes err to reportInvalid when it belongs to the canonical
// taxonomy and to a command error otherwise.
func reportError(f *OutputFormatter, code string, err error) error {
	var ce *canonerr.Error
	if errors.As(err, &ce) {
		return reportInvalid(f, ce)
	}
	return f.CommandError(code, err)
}
