// mml drives the MinnieML semantic pipeline over a parser-emitted module
// AST: check runs the phases and prints diagnostics, compile additionally
// gates on the pre-codegen validator and writes the resolved AST for the
// IR emitter.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedesilva/minnieml/internal/ast"
	"github.com/fedesilva/minnieml/internal/config"
	"github.com/fedesilva/minnieml/internal/diag"
	"github.com/fedesilva/minnieml/internal/pipeline"
	"github.com/fedesilva/minnieml/internal/semantic"
)

// Version info, set by ldflags during build.
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	flagConfig    string
	flagMode      string
	flagNoTCO     bool
	flagDumpAst   bool
	flagAllErrors bool
	flagJSON      bool
	flagTimings   bool
	flagOut       string
)

func main() {
	root := &cobra.Command{
		Use:           "mml",
		Short:         "The MinnieML compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "mml.yaml", "project configuration file")
	root.PersistentFlags().StringVar(&flagMode, "mode", "", "compilation mode (binary, library, ast, ir)")
	root.PersistentFlags().BoolVar(&flagNoTCO, "no-tco", false, "disable tail-call detection")
	root.PersistentFlags().BoolVar(&flagAllErrors, "all-errors", false, "show secondary errors too")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "print errors as JSON reports")
	root.PersistentFlags().BoolVar(&flagTimings, "timings", false, "print per-phase timings")

	check := &cobra.Command{
		Use:   "check <module.json>",
		Short: "Run the semantic phases and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], false)
		},
	}
	check.Flags().BoolVar(&flagDumpAst, "dump-ast", false, "print the resolved AST")

	compile := &cobra.Command{
		Use:   "compile <module.json>",
		Short: "Run the pipeline and emit the resolved AST for the IR emitter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], true)
		},
	}
	compile.Flags().StringVarP(&flagOut, "out", "o", "", "output file (default <module>.resolved.json)")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mml %s (%s)\n", Version, Commit)
		},
	}

	root.AddCommand(check, compile, version)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, emit bool) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if flagNoTCO {
		cfg.NoTCO = true
	}
	if cfg.AllErrors {
		flagAllErrors = true
	}
	if cfg.JSON {
		flagJSON = true
	}
	mode, ok := semantic.ParseMode(cfg.Mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mod, err := ast.DecodeModule(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	result := pipeline.Run(pipeline.Config{Mode: mode, NoTCO: cfg.NoTCO}, mod)

	if flagJSON {
		for _, r := range result.Reports {
			if r.Secondary && !flagAllErrors {
				continue
			}
			line, jerr := r.ToJSON(true)
			if jerr != nil {
				return jerr
			}
			fmt.Println(line)
		}
	} else {
		printer := diag.NewPrinter(os.Stderr, flagAllErrors)
		shown := printer.Print(result.Reports)
		printer.Summary(shown)
	}

	if flagTimings {
		printTimings(result)
	}
	if flagDumpAst || cfg.DumpAst {
		fmt.Print(ast.Print(result.State.Module))
	}

	if !result.Emittable() {
		return fmt.Errorf("compilation failed")
	}
	if emit {
		out := flagOut
		if out == "" {
			out = path + ".resolved.json"
		}
		encoded, eerr := ast.EncodeModule(result.State.Module)
		if eerr != nil {
			return eerr
		}
		if werr := os.WriteFile(out, encoded, 0o644); werr != nil {
			return werr
		}
		fmt.Printf("wrote %s\n", out)
	}
	return nil
}

func printTimings(result pipeline.Result) {
	var total time.Duration
	for _, phase := range pipeline.Phases() {
		d := result.PhaseTimings[phase.Name()]
		total += d
		fmt.Fprintf(os.Stderr, "%-28s %s\n", phase.Name(), d)
	}
	fmt.Fprintf(os.Stderr, "%-28s %s\n", "total", total)
}
