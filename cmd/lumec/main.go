package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"lume/frontend-go/pkg/diagnostics"
	"lume/frontend-go/pkg/driver"
)

const cliToolVersion = "lumec 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

type invocation struct {
	command string
	file    string
	entry   string
	verbose bool
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "check", "desugar":
		inv, err := parseInvocation(args[0], args[1:])
		if err != nil {
			fmt.Fprintf(c.stderr, "%v\n", err)
			c.printUsage()
			return 1
		}
		return c.compile(inv)
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
		c.printUsage()
		return 1
	}
}

func parseInvocation(command string, args []string) (invocation, error) {
	inv := invocation{command: command}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose" || arg == "-v":
			inv.verbose = true
		case arg == "--entry":
			if i+1 >= len(args) {
				return inv, errors.New("--entry requires a definition name")
			}
			i++
			inv.entry = args[i]
		case strings.HasPrefix(arg, "--entry="):
			inv.entry = strings.TrimPrefix(arg, "--entry=")
		case strings.HasPrefix(arg, "-"):
			return inv, fmt.Errorf("unknown flag %s", arg)
		case inv.file == "":
			inv.file = arg
		default:
			return inv, fmt.Errorf("unexpected arguments: %s", strings.Join(args[i:], " "))
		}
	}
	if inv.file == "" {
		return inv, fmt.Errorf("lumec %s requires a program file", command)
	}
	if inv.entry != "" && strings.TrimSpace(inv.entry) == "" {
		return inv, errors.New("--entry must not be blank")
	}
	return inv, nil
}

func (c *cli) compile(inv invocation) int {
	manifest, err := manifestFor(inv.file)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to load manifest for %s: %v\n", inv.file, err)
		return 1
	}

	level := ""
	if manifest != nil {
		level = manifest.Log.Level
	}
	logger, err := driver.NewLogger(level, inv.verbose)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to configure logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	book, err := driver.LoadProgram(inv.file)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}

	opts := driver.OptionsFromManifest(manifest)
	if inv.entry != "" {
		opts.Entrypoint = strings.TrimSpace(inv.entry)
	}
	opts.Logger = logger
	if manifest != nil {
		logger.Debug("using manifest",
			zap.String("path", manifest.Path),
			zap.String("name", manifest.Name),
			zap.String("version", manifest.Version),
			zap.Strings("authors", manifest.Authors),
		)
	}

	result, err := driver.Compile(context.Background(), book, opts)
	if err != nil {
		fmt.Fprintf(c.stderr, "compile failed: %v\n", err)
		return 1
	}
	if err := result.Book.Diagnostics.Fatal(); err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintln(c.stderr, diagnostics.Describe(d))
	}

	switch inv.command {
	case "desugar":
		fmt.Fprintln(c.stdout, result.Book.String())
	default:
		fmt.Fprintf(c.stdout, "ok: entry point '%s'\n", result.Entry)
	}
	return 0
}

// manifestFor loads the lume.yml governing file, or nil when none exists.
func manifestFor(file string) (*driver.Manifest, error) {
	absFile, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	path, err := driver.FindManifest(filepath.Dir(absFile))
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  lumec check <file.yml> [--entry name] [--verbose]")
	fmt.Fprintln(c.stderr, "  lumec desugar <file.yml> [--entry name] [--verbose]")
	fmt.Fprintln(c.stderr, "  lumec --version")
}
