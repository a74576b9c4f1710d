// Package main provides the entry point for umsim, an emulator for the
// 32-bit word machine with an optional timing model.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gopkg.in/urfave/cli.v1"

	"github.com/sarchlab/umsim/benchmarks"
	"github.com/sarchlab/umsim/insts"
	"github.com/sarchlab/umsim/loader"
)

var runFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to a TOML run file (max_instructions, heap_limit, [latency], [icache], [dcache])",
	},
	cli.Uint64Flag{
		Name:  "max-instructions, n",
		Usage: "stop after this many instructions (0 = unlimited)",
	},
	cli.Uint64Flag{
		Name:  "identifier-limit",
		Usage: "largest array identifier the heap may hand out (0 = no limit)",
	},
	cli.Uint64Flag{
		Name:  "heap-limit",
		Usage: "most words the heap may hold across live arrays (0 = default)",
	},
	cli.BoolFlag{
		Name:  "timing, t",
		Usage: "run under the timing model and print a report to stderr",
	},
	cli.BoolFlag{
		Name:  "trace",
		Usage: "log every executed instruction and heap event",
	},
}

var globalFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "verbose",
		Usage: "verbose logging and a machine state dump on fault",
	},
	cli.StringFlag{
		Name:  "log",
		Usage: "write logs to this file instead of stderr",
	},
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "umsim"
	app.Usage = "run programs for the 32-bit word machine"
	app.ArgsUsage = "<program.um>"
	app.Version = "0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = append(append([]cli.Flag{}, globalFlags...), runFlags...)

	run := func(c *cli.Context) error {
		return runCommand(c, stdin, stdout, stderr)
	}

	app.Action = run
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "run a program image",
			ArgsUsage: "<program.um>",
			Flags:     runFlags,
			Action:    run,
		},
		{
			Name:      "disasm",
			Usage:     "print the instructions of a program image",
			ArgsUsage: "<program.um>",
			Action: func(c *cli.Context) error {
				return disasmCommand(c, stdout)
			},
		},
		{
			Name:  "bench",
			Usage: "run the built-in microbenchmarks under the timing model",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config, c", Usage: "path to a TOML run file"},
				cli.StringFlag{Name: "format, f", Value: "table", Usage: "table, csv or json"},
			},
			Action: func(c *cli.Context) error {
				return benchCommand(c, stdout)
			},
		},
	}

	return app
}

// configureLogging maps --verbose to info and --trace to debug.
func configureLogging(c *cli.Context) {
	verbosity := 0
	if c.GlobalBool("verbose") {
		verbosity = 1
	}
	if lookupBool(c, "trace") {
		verbosity = 2
	}

	if path := c.GlobalString("log"); path != "" {
		commonlog.Configure(verbosity, &path)
	} else {
		commonlog.Configure(verbosity, nil)
	}
}

// lookupString reads a flag given either before or after the command name.
func lookupString(c *cli.Context, name string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return c.GlobalString(name)
}

func lookupBool(c *cli.Context, name string) bool {
	return c.Bool(name) || c.GlobalBool(name)
}

// lookupUint64 reports whether the flag was given and its value.
func lookupUint64(c *cli.Context, name string) (uint64, bool) {
	if c.IsSet(name) {
		return c.Uint64(name), true
	}
	if c.GlobalIsSet(name) {
		return c.GlobalUint64(name), true
	}
	return 0, false
}

func loadRunConfig(c *cli.Context) (*RunConfig, error) {
	config := DefaultRunConfig()
	if path := lookupString(c, "config"); path != "" {
		var err error
		if config, err = LoadRunConfig(path); err != nil {
			return nil, err
		}
	}

	if n, ok := lookupUint64(c, "max-instructions"); ok {
		config.MaxInstructions = n
	}

	if n, ok := lookupUint64(c, "identifier-limit"); ok {
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("identifier-limit %d exceeds %d", n, uint64(math.MaxUint32))
		}
		config.IdentifierLimit = uint32(n)
	}

	if n, ok := lookupUint64(c, "heap-limit"); ok {
		config.HeapLimit = n
	}

	return config, nil
}

func runCommand(c *cli.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	configureLogging(c)

	if c.NArg() < 1 {
		return fmt.Errorf("missing program image\nusage: umsim [options] <program.um>")
	}

	config, err := loadRunConfig(c)
	if err != nil {
		return err
	}

	_, err = runProgram(runOptions{
		programPath: c.Args().First(),
		config:      config,
		timing:      lookupBool(c, "timing"),
		trace:       lookupBool(c, "trace"),
		verbose:     c.GlobalBool("verbose"),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
	})
	return err
}

func disasmCommand(c *cli.Context, stdout io.Writer) error {
	configureLogging(c)

	if c.NArg() < 1 {
		return fmt.Errorf("missing program image\nusage: umsim disasm <program.um>")
	}

	prog, err := loader.Load(c.Args().First())
	if err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}

	for i, line := range insts.Disassemble(prog.Words) {
		_, _ = fmt.Fprintf(stdout, "%6d: %08x  %s\n", i, prog.Words[i], line)
	}
	return nil
}

func benchCommand(c *cli.Context, stdout io.Writer) error {
	configureLogging(c)

	harnessConfig := benchmarks.DefaultConfig()
	harnessConfig.Output = stdout
	harnessConfig.Verbose = c.GlobalBool("verbose")

	if path := c.String("config"); path != "" {
		config, err := LoadRunConfig(path)
		if err != nil {
			return err
		}
		harnessConfig.Core = config.Core()
		if config.MaxInstructions > 0 {
			harnessConfig.MaxInstructions = config.MaxInstructions
		}
	}

	harness := benchmarks.NewHarness(harnessConfig)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	results := harness.RunAll()

	switch strings.ToLower(c.String("format")) {
	case "csv":
		harness.PrintCSV(results)
	case "json":
		return harness.PrintJSON(results)
	case "table", "":
		harness.PrintResults(results)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
	return nil
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, errFaulted) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
