package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/internal/store"
)

// StoreOptions holds flags for commands that use the form store.
type StoreOptions struct {
	*RootOptions
	Database string
}

func addDBFlag(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
}

func (o *StoreOptions) open(f *OutputFormatter) (*store.Store, error) {
	st, err := store.Open(o.Database, store.WithLogger(f.log()))
	if err != nil {
		return nil, f.CommandError(ErrCodeStoreFailed, fmt.Errorf("open %s: %w", o.Database, err))
	}
	f.log().Debug("store opened", "db", o.Database)
	return st, nil
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Canonicalize a value and store it by content address",
		Long: `Canonicalize a value and store it in a SQLite database.

The printed id is a domain-separated SHA-256 over the profile-bound canonical
bytes. Storing the same value again returns the existing record.`,
		Example:       `  canonedn put --db forms.db data.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, cmd, args)
		},
	}
	addDBFlag(cmd, opts)

	return cmd
}

func runPut(opts *StoreOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)

	p, err := opts.resolveProfile()
	if err != nil {
		return f.CommandError(ErrCodeProfile, err)
	}
	v, _, err := opts.loadValue(cmd, f, args)
	if err != nil {
		return err
	}

	st, err := opts.open(f)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Put(commandContext(cmd), v, p)
	if err != nil {
		return reportError(f, ErrCodeStoreFailed, err)
	}
	return f.Success(rec.ID, rec)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Print a stored canonical form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, cmd, args[0])
		},
	}
	addDBFlag(cmd, opts)

	return cmd
}

func runGet(opts *StoreOptions, cmd *cobra.Command, id string) error {
	f := opts.newFormatter(cmd)

	st, err := opts.open(f)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Get(commandContext(cmd), id)
	if err != nil {
		code := ErrCodeStoreFailed
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeNotFound
		}
		return f.CommandError(code, err)
	}
	return f.Success(rec.Canonical, rec)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored forms in insertion order",
		Long: `List stored forms in insertion order.

Only forms stored under the --profile profile are listed unless --all is set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd, all)
		},
	}
	addDBFlag(cmd, opts)
	cmd.Flags().BoolVar(&all, "all", false, "list forms from every profile")

	return cmd
}

func runList(opts *StoreOptions, cmd *cobra.Command, all bool) error {
	f := opts.newFormatter(cmd)

	filter := ""
	if !all {
		p, err := opts.resolveProfile()
		if err != nil {
			return f.CommandError(ErrCodeProfile, err)
		}
		filter = p.Name
	}

	st, err := opts.open(f)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(commandContext(cmd), filter)
	if err != nil {
		return f.CommandError(ErrCodeStoreFailed, err)
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = fmt.Sprintf("%d\t%s\t%s\t%s", rec.Seq, rec.ID, rec.Profile, rec.Canonical)
	}
	return f.Success(strings.Join(lines, "\n"), records)
}

// commandContext returns cmd's context, which is nil when a command is
// executed directly rather than through a parent.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
