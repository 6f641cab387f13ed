package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for database/sql
	"github.com/pressly/goose/v3"

	"github.com/samirrijal/busseat/internal/pkg/config"
	"github.com/samirrijal/busseat/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("busseat-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("goose provider: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "up":
		results, err := provider.Up(ctx)
		report(results)
		if err != nil {
			log.Fatalf("up: %v", err)
		}
		log.Println("all migrations applied")
	case "down":
		res, err := provider.Down(ctx)
		if res != nil {
			report([]*goose.MigrationResult{res})
		}
		if err != nil {
			log.Fatalf("down: %v", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-8d %-24s %s\n", s.Source.Version, applied, s.Source.Path)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func report(results []*goose.MigrationResult) {
	for _, r := range results {
		fmt.Printf("OK  %s (%s, %v)\n", r.Source.Path, r.Direction, r.Duration)
	}
}
