// Command canonedn canonicalizes structured data into byte-exact EDN.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/franks42/canonical-edn/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cli.GetExitCode(cmd.ExecuteContext(ctx))
}
