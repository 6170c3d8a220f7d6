package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/migrate"
)

const usage = `usage: migrate [-dir path] <command> [arg]

commands:
  up               apply pending migrations
  down             roll back the newest migration
  status           list migrations and whether they are applied
  version          print the newest applied version
  to <version>     migrate up or down to YYYYMMDDHHMMSS
  create <name>    write an empty migration into -dir
  validate         check file names and goose markers in -dir

Without -dir, database commands use the migrations built into the binary.
`

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := fs.String("dir", "", "migrations directory on disk")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": args[0], "dir": *dir})
	if err := run(ctx, logg, args, *dir, os.Stdout); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, args []string, dir string, out io.Writer) error {
	cmd, arg := args[0], ""
	if len(args) > 1 {
		arg = args[1]
	}

	// Authoring commands work on the source tree and need no database.
	switch cmd {
	case "create":
		if arg == "" {
			return errors.New("create needs a migration name")
		}
		path, err := migrate.CreateSQLMigration(dirOrDefault(dir), arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(dirOrDefault(dir)); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations ok")
		return nil
	}

	runner, closeDB, err := openRunner(ctx, logg, dir)
	if err != nil {
		return err
	}
	defer closeDB()

	switch cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", applied)
	case "down":
		return runner.Down(ctx)
	case "to":
		version, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("to needs a YYYYMMDDHHMMSS version: %w", err)
		}
		return runner.To(ctx, version)
	case "version":
		v, err := runner.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(out, statuses)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func openRunner(ctx context.Context, logg *logger.Logger, dir string) (*migrate.Runner, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}
	if !client.IsPostgres() {
		closeDB()
		return nil, nil, errors.New("goose migrations target postgres; sqlite dev databases sync from models")
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.Source(dir))
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return runner, closeDB, nil
}

func printStatus(w io.Writer, statuses []migrate.Applied) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		state, at := "pending", "-"
		if st.Applied {
			state, at = "applied", st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Version, state, at, st.Path)
	}
	_ = tw.Flush()
}

func dirOrDefault(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}
