// Command ecopredict scores household energy efficiency.
package main

import (
	"context"
	"os"

	"github.com/rshade/ecopredict/internal/cli"
	"github.com/rshade/ecopredict/pkg/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
// Cobra has already printed the error by the time it returns.
func run(ctx context.Context, args []string) int {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	return extractExitCode(root.ExecuteContext(ctx))
}

// extractExitCode maps a command error to its exit code: 0 on success,
// 2 for input validation failures, 1 for everything else.
func extractExitCode(err error) int {
	return cli.ExitCode(err)
}
