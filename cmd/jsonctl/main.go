// Command jsonctl is a non-interactive CLI over the jsonkit toolkit:
// parse, validate, and format JSON files, optionally splitting large
// top-level arrays across a worker pool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"roseh.moe/pkg/jsonkit/coordinate"
	"roseh.moe/pkg/jsonkit/parser"
	"roseh.moe/pkg/jsonkit/serialize"
	"roseh.moe/pkg/jsonkit/validate"
	"roseh.moe/pkg/jsonkit/value"
)

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:           "jsonctl",
		Short:         "Parse, validate, and format JSON",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newParseCmd(cfg),
		newValidateCmd(cfg),
		newFormatCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "jsonctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *Config) (*slog.Logger, error) {
	h, err := newHandler(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func coordinatorConfig(cfg *Config, log *slog.Logger) coordinate.Config {
	return coordinate.Config{
		Workers:         cfg.Workers,
		ChunksPerWorker: cfg.ChunksPerWorker,
		FailFast:        cfg.FailFast,
		OnProgress: func(p coordinate.Progress) {
			log.Debug("progress",
				"processed_chunks", p.ProcessedChunks,
				"total_chunks", p.TotalChunks,
				"processed_bytes", p.ProcessedBytes,
				"errors_found", p.ErrorsFound,
				"complete", p.IsComplete,
			)
		},
	}
}

func serializeOptions(cfg *Config) serialize.Options {
	if cfg.Pretty {
		opts := serialize.Pretty(cfg.IndentSize)
		opts.SortKeys = cfg.SortKeys
		opts.EscapeNonASCII = cfg.EscapeNonASCII
		return opts
	}
	opts := serialize.Compact()
	opts.SortKeys = cfg.SortKeys
	opts.EscapeNonASCII = cfg.EscapeNonASCII
	return opts
}

func newParseCmd(cfg *Config) *cobra.Command {
	var parallel bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse JSON into the document model and re-emit it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			data, err := readInput(args)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			doc, err := runParse(data, parallel, cfg, log)
			if err != nil {
				return err
			}

			out, err := serialize.Marshal(doc, serializeOptions(cfg))
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			out = append(out, '\n')
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&parallel, "parallel", false,
		"partition a top-level array and parse chunks concurrently")
	return cmd
}

func runParse(data []byte, parallel bool, cfg *Config, log *slog.Logger) (value.Value, error) {
	if !parallel {
		return parser.Parse(data)
	}
	return coordinate.NewCoordinator(coordinatorConfig(cfg, log)).ParseParallel(data)
}

func newValidateCmd(cfg *Config) *cobra.Command {
	var parallel bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check JSON syntax and report diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			data, err := readInput(args)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			mode := validate.Strict
			if cfg.Recovery {
				mode = validate.Recovery
			}

			var res validate.Result
			if parallel {
				res, err = coordinate.NewCoordinator(coordinatorConfig(cfg, log)).ValidateParallel(data, mode)
			} else {
				res = validate.Validate(data, mode)
			}
			if err != nil {
				return err
			}

			for _, d := range res.Diagnostics {
				fmt.Fprintln(cmd.OutOrStdout(), d.String())
			}

			log.Info("validated",
				"valid", res.Valid,
				"diagnostics", len(res.Diagnostics),
				"tokens", res.TokenCount,
				"lines", res.LineCount,
			)

			if !res.Valid {
				return fmt.Errorf("%d diagnostic(s) found", len(res.Diagnostics))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&parallel, "parallel", false,
		"partition a top-level array and validate chunks concurrently")
	return cmd
}

func newFormatCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Parse and re-serialize JSON, normalizing whitespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			doc, err := parser.Parse(data)
			if err != nil {
				return err
			}

			out, err := serialize.Marshal(doc, serializeOptions(cfg))
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			out = append(out, '\n')
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	return cmd
}
