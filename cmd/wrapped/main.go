// cmd/wrapped/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/codr1/saf-wrapped/internal/config"
	"github.com/codr1/saf-wrapped/internal/reservations"
	"github.com/codr1/saf-wrapped/internal/stats"
)

const (
	exitOK    = 0
	exitError = 1
	exitEmpty = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("wrapped", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		configPath = flags.String("config", "", "Path to config.yaml (optional)")
		pretty     = flags.Bool("pretty", false, "Indent JSON output")
		verbose    = flags.Bool("v", false, "Log skipped rows")
	)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: wrapped [-config path] [-pretty] [-v] <file.csv|->")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitError
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitError
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return exitError
	}

	content, err := readInput(flags.Arg(0), stdin)
	if err != nil {
		logger.Error().Err(err).Str("input", flags.Arg(0)).Msg("Could not read file")
		return exitError
	}

	records, report, err := reservations.ParseWithReport(content)
	if errors.Is(err, reservations.ErrEmptyInput) {
		logger.Error().Err(err).Str("input", flags.Arg(0)).Msg("Could not read file")
		return exitEmpty
	}
	logger.Debug().
		Int("lines", report.Lines).
		Int("parsed", report.Parsed).
		Int("skipped", report.Skipped).
		Msg("Parsed reservation export")

	result := stats.CalculateWithOptions(records, cfg.StatsOptions())

	encoder := json.NewEncoder(stdout)
	if *pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(result); err != nil {
		logger.Error().Err(err).Msg("Failed to write statistics")
		return exitError
	}
	return exitOK
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
