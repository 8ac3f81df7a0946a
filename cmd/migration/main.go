package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"squad-ingest/db/migrations"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("migration", flag.ContinueOnError)
	dbURL := flags.String("db-url", os.Getenv("DB_URL"), "postgres connection url")
	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return errors.New("usage: migration [-db-url url] <up|down|version|force <v>|goto <v>>")
	}
	if *dbURL == "" {
		return errors.New("db url is required (flag -db-url or env DB_URL)")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dbURL)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		_ = srcErr
		_ = dbErr
	}()

	switch rest[0] {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Steps(-1))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		version, err := parseVersionArg(rest)
		if err != nil {
			return err
		}
		return m.Force(version)
	case "goto":
		version, err := parseVersionArg(rest)
		if err != nil {
			return err
		}
		return ignoreNoChange(m.Migrate(uint(version)))
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func parseVersionArg(rest []string) (int, error) {
	if len(rest) < 2 {
		return 0, fmt.Errorf("command %q requires a version argument", rest[0])
	}
	version, err := strconv.Atoi(rest[1])
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid version %q", rest[1])
	}
	return version, nil
}

func ignoreNoChange(err error) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
