package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cli := &commands.CLI{LogOutput: stderr}
	code, exited := 0, false
	exit := func(c int) { code, exited = c, true }

	parser, err := kong.New(cli,
		kong.Name("assetbuilder"),
		kong.Description("assetbuilder: bundle CSS themes and publish a static asset tree."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return 1
	}

	kctx, err := parser.Parse(args)
	if exited {
		return code
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	if err := kctx.Run(&commands.Global{Out: stdout}, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(stderr, exit).HandleError(err)
		if code == 0 {
			code = 1
		}
	}
	return code
}
