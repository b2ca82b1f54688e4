// enrolmethods is a one-shot CLI for importing course meta-enrolment links
// from a CSV file. It validates the file shape, optionally stops there, and
// otherwise processes every line and prints the per-line report to stdout.
//
// The database connection string comes from DATABASE_URL (a .env file is
// honored). Exit code is non-zero on a fatal import error; per-line failures
// are part of the report and do not affect the exit code.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/database"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/logging"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/messages"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		file         string
		userID       int64
		validateOnly bool
		logLevel     string
	)

	flagSet := pflag.NewFlagSet("enrolmethods", pflag.ContinueOnError)
	flagSet.StringVar(&file, "file", "", "path to the import CSV, or a staged filename")
	flagSet.Int64Var(&userID, "user", 0, "user id owning the staged file (ignored for direct paths)")
	flagSet.BoolVar(&validateOnly, "validate-only", false, "check file shape and exit without processing")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if file == "" {
		return fmt.Errorf("--file is required")
	}

	logging.Setup(logLevel, "text")

	_ = godotenv.Load()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	store := database.NewStore(pool)
	catalog := messages.MustLoad()
	importer := core.NewImporter(store, store, store, store, catalog)

	if err := importer.Validate(ctx, userID, file); err != nil {
		return formatFatal(catalog, err)
	}
	if validateOnly {
		fmt.Println("file is valid")
		return nil
	}

	report, err := importer.Process(ctx, userID, file)
	if err != nil {
		return formatFatal(catalog, err)
	}

	fmt.Println(report)
	return nil
}

// formatFatal renders a fatal import error through the message catalog so
// the CLI and the HTTP API report the same text.
func formatFatal(catalog *messages.Catalog, err error) error {
	var ie *core.ImportError
	if errors.As(err, &ie) {
		return errors.New(catalog.Format(ie.Key, ie.Params()))
	}
	return err
}
