package main

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names, letting an embedder rename them without
// touching Config's field layout.
type Flags struct {
	Workers         string
	ChunksPerWorker string
	FailFast        string
	Pretty          string
	IndentSize      string
	SortKeys        string
	EscapeNonASCII  string
	Recovery        string
	LogLevel        string
	LogFormat       string
}

// Config holds CLI flag values shared by every subcommand.
type Config struct {
	Flags Flags

	Workers         int
	ChunksPerWorker int
	FailFast        bool
	Pretty          bool
	IndentSize      int
	SortKeys        bool
	EscapeNonASCII  bool
	Recovery        bool
	LogLevel        string
	LogFormat       string
}

// NewConfig returns a Config with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Workers:         "workers",
			ChunksPerWorker: "chunks-per-worker",
			FailFast:        "fail-fast",
			Pretty:          "pretty",
			IndentSize:      "indent",
			SortKeys:        "sort-keys",
			EscapeNonASCII:  "escape-non-ascii",
			Recovery:        "recovery",
			LogLevel:        "log-level",
			LogFormat:       "log-format",
		},
	}
}

// RegisterFlags adds this Config's flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.Workers, c.Flags.Workers, 0,
		"parallel worker count for chunked operations (0 selects logical cores minus one)")
	flags.IntVar(&c.ChunksPerWorker, c.Flags.ChunksPerWorker, 1,
		"chunks partitioned per worker, for finer progress granularity")
	flags.BoolVar(&c.FailFast, c.Flags.FailFast, false,
		"stop launching new chunks after the first error")
	flags.BoolVarP(&c.Pretty, c.Flags.Pretty, "p", false,
		"pretty-print output with newlines and indentation")
	flags.IntVar(&c.IndentSize, c.Flags.IndentSize, 2,
		"indent width in spaces when --pretty is set")
	flags.BoolVar(&c.SortKeys, c.Flags.SortKeys, false,
		"emit object keys in ascending order (document model already iterates them sorted)")
	flags.BoolVar(&c.EscapeNonASCII, c.Flags.EscapeNonASCII, false,
		"escape bytes above U+007F as \\uXXXX instead of passing UTF-8 through")
	flags.BoolVarP(&c.Recovery, c.Flags.Recovery, "r", false,
		"keep validating past the first diagnostic instead of stopping")
	flags.StringVar(&c.LogLevel, c.Flags.LogLevel, "info",
		"log level: debug, info, warn, error")
	flags.StringVar(&c.LogFormat, c.Flags.LogFormat, "logfmt",
		"log output format: logfmt or json")
}
