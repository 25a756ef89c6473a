package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/internal/ingest"
	"github.com/franks42/canonical-edn/profile"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Profile    string // built-in profile name or path to a YAML profile
	From       string // input format; empty infers from the file extension
	StringKeys bool   // keep JSON/YAML/CUE object keys as strings
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the canonedn CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "canonedn",
		Short: "canonedn - canonical EDN for signing and content addressing",
		Long: `Canonicalize structured data into byte-exact EDN text.

Identical logical values always produce identical bytes, so the output can be
hashed, signed, and verified on any platform.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.From != "" {
				if _, err := ingest.ParseFormat(opts.From); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", profile.Default.Name, "profile: portable, rich, or path to a YAML profile")
	cmd.PersistentFlags().StringVar(&opts.From, "from", "", "input format (edn|json|yaml|cue); inferred from the file extension when empty")
	cmd.PersistentFlags().BoolVar(&opts.StringKeys, "string-keys", false, "keep object keys from JSON/YAML/CUE input as strings instead of keywords")

	cmd.AddCommand(NewCanonCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHashCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSignCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewConformanceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// resolveProfile loads the profile named by the --profile flag.
func (o *RootOptions) resolveProfile() (profile.Profile, error) {
	return profile.Resolve(o.Profile)
}

// ingestOptions maps flags to decoder options.
func (o *RootOptions) ingestOptions() ingest.Options {
	opts := ingest.DefaultOptions
	opts.KeywordizeKeys = !o.StringKeys
	return opts
}

// newLogger builds the diagnostic logger: Debug when verbose, Warn otherwise.
func (o *RootOptions) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newFormatter creates the output formatter for cmd.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		Logger:    o.newLogger(cmd.ErrOrStderr()),
	}
}
