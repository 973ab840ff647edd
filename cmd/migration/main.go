package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// The schema is two tables, so the runner stays small: up, down, version and
// a force escape hatch for a dirty state.
func main() {
	if len(os.Args) < 2 {
		usage()
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		log.Fatal("DB_URL is required")
	}

	dir, err := migrationsDir()
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("close migrator: source=%v db=%v", srcErr, dbErr)
		}
	}()

	switch strings.ToLower(os.Args[1]) {
	case "up":
		report(m.Up())
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps = mustPositiveInt(os.Args[2])
		}
		report(m.Steps(-steps))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return
		}
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		fmt.Printf("version: %d dirty: %t\n", version, dirty)
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force requires a version argument")
		}
		if err := m.Force(mustPositiveInt(os.Args[2])); err != nil {
			log.Fatalf("force version: %v", err)
		}
	default:
		usage()
	}
}

func report(err error) {
	switch {
	case err == nil:
		log.Print("done")
	case errors.Is(err, migrate.ErrNoChange):
		log.Print("no change")
	default:
		log.Fatal(err)
	}
}

func mustPositiveInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		log.Fatalf("expected a positive number, got %q", raw)
	}
	return value
}

func migrationsDir() (string, error) {
	for _, candidate := range []string{os.Getenv("MIGRATIONS_DIR"), "./migrations", "/app/migrations"} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", errors.New("migration directory not found (set MIGRATIONS_DIR or run next to ./migrations)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>>\n", filepath.Base(os.Args[0]))
	os.Exit(2)
}
