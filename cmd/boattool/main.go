// Command boattool exercises the boat kernel outside a host process.
//
// Usage:
//
//	boattool polar  [-plan plan.yaml] [-out polar.csv] [-vmg] [-perf 1s]
//	boattool plan   -out plan.yaml
//	boattool replay [-trace dir] [-workers n] [script]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sailnavsim/advancedboats/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "No arguments provided. Commands: polar, plan, replay")
		return 2
	}

	level := os.Getenv("BOATTOOL_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger := logging.NewConsoleLogger(stderr, level)

	var err error
	switch strings.ToLower(args[0]) {
	case "polar":
		err = runPolar(args[1:], stdout, stderr, logger)
	case "plan":
		err = runPlan(args[1:], stderr, logger)
	case "replay":
		err = runReplay(args[1:], stdin, stdout, stderr, logger)
	default:
		fmt.Fprintf(stderr, "Unknown command %q. Commands: polar, plan, replay\n", args[0])
		return 2
	}

	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("failed")
		return 1
	}
	return 0
}
