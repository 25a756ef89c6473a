package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franks42/canonical-edn/internal/harness"
)

// NewConformanceCommand creates the conformance command.
func NewConformanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conformance <suite.yaml>...",
		Short: "Run conformance vector suites",
		Long: `Run one or more YAML conformance suites.

Each vector is canonicalized under its profile and compared with the expected
canonical text or error. Successful outputs must also read back unchanged and
the validator must agree with emission. Exits 1 when any vector fails.`,
		Example: `  canonedn conformance testdata/suites/basic.yaml
  canonedn conformance --format json suites/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConformance(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runConformance(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := opts.newFormatter(cmd)
	runner := harness.NewRunner(f.log())

	var results []*harness.Result
	for _, path := range args {
		suite, err := harness.LoadSuite(path)
		if err != nil {
			return f.CommandError(ErrCodeParseFailed, err)
		}
		f.VerboseLog("Running suite %s (%d vectors)", suite.Name, len(suite.Vectors))
		results = append(results, runner.Run(suite))
	}

	var sb strings.Builder
	pass, total, failed := true, 0, 0
	for _, r := range results {
		total += len(r.Vectors)
		failed += len(r.Failed())
		pass = pass && r.Pass
		for _, v := range r.Failed() {
			fmt.Fprintf(&sb, "✗ %s/%s\n", r.Suite, v.Name)
			for _, e := range v.Errors {
				fmt.Fprintf(&sb, "    %s\n", e)
			}
		}
	}
	summary := fmt.Sprintf("%d/%d vectors passed", total-failed, total)

	if pass {
		return f.Success("✓ "+summary, results)
	}
	if err := f.Failure(sb.String()+summary, results, ErrCodeInvalidValue, summary); err != nil {
		return err
	}
	return NewExitError(ExitFailure, summary)
}
