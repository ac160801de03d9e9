// Command pidgen-admin is a thin CLI wrapper over the three engine
// operations (initialize, generate, exists). It owns configuration loading,
// process signals, and output formatting - everything the engine itself
// deliberately stays ignorant of.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dans-labs/pidgen/internal/config"
	"github.com/dans-labs/pidgen/internal/encode"
	"github.com/dans-labs/pidgen/internal/engine"
	"github.com/dans-labs/pidgen/internal/kind"
	"github.com/dans-labs/pidgen/internal/logging"
	"github.com/dans-labs/pidgen/internal/store"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	flags := flag.NewFlagSet("pidgen-admin", flag.ContinueOnError)
	flags.SetInterspersed(false)
	configPath := flags.StringP("config", "c", "pidgen.hujson", "path to the pidgen configuration file")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if flags.NArg() < 1 {
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pidgen-admin: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Prefix: "pidgen-admin", Output: stderr})

	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("open store failed", "err", err)
		return 1
	}
	defer func() { _ = s.Close() }()

	enc := encode.New(encode.Config{
		DOIPrefix:    cfg.DOIPrefix,
		DOINamespace: cfg.DOINamespace,
		URNNamespace: cfg.URNNamespace,
	})
	gen := engine.New(s, enc, nil, logger)

	sub := flags.Arg(0)
	rest := flags.Args()[1:]

	switch sub {
	case "init":
		return cmdInit(ctx, gen, stdout, stderr, rest)
	case "generate":
		return cmdGenerate(ctx, gen, stdout, stderr, rest)
	case "exists":
		return cmdExists(ctx, gen, stdout, stderr, rest)
	default:
		printUsage(stderr)
		return 2
	}
}

func printUsage(out *os.File) {
	fmt.Fprintln(out, "usage: pidgen-admin [-c config] <init|generate|exists> ...")
}

func parseKind(s string) (kind.Kind, error) {
	return kind.Parse(s)
}

func cmdInit(ctx context.Context, gen *engine.Generator, stdout, stderr *os.File, args []string) int {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	kindFlag := flags.String("kind", "", "identifier kind: DOI or URN")
	seedFlag := flags.Uint64("seed", 0, "starting seed value")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	k, err := parseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if err := gen.Initialize(ctx, k, *seedFlag); err != nil {
		fmt.Fprintf(stderr, "pidgen-admin: init: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "initialized %s at seed %d\n", k, *seedFlag)

	return 0
}

func cmdGenerate(ctx context.Context, gen *engine.Generator, stdout, stderr *os.File, args []string) int {
	flags := flag.NewFlagSet("generate", flag.ContinueOnError)
	kindFlag := flags.String("kind", "", "identifier kind: DOI or URN")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	k, err := parseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	pid, err := gen.Generate(ctx, k)
	if err != nil {
		fmt.Fprintf(stderr, "pidgen-admin: generate: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, pid.Identifier)

	return 0
}

func cmdExists(ctx context.Context, gen *engine.Generator, stdout, stderr *os.File, args []string) int {
	flags := flag.NewFlagSet("exists", flag.ContinueOnError)
	kindFlag := flags.String("kind", "", "identifier kind: DOI or URN")
	idFlag := flags.String("id", "", "identifier to look up")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	k, err := parseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	found, err := gen.Exists(ctx, k, *idFlag)
	if err != nil {
		fmt.Fprintf(stderr, "pidgen-admin: exists: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, found)

	return 0
}
