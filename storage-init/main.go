// Command storage-init applies the schema to the configured database and
// optionally loads the demo boards.
package main

import (
	"context"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"taskly-api/config"
	"taskly-api/storage"
)

func main() {
	fs := flag.NewFlagSet("storage-init", flag.ExitOnError)
	seed := fs.Bool("seed", false, "replace the database contents with demo boards")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage init starting")

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.DatabaseURL, storage.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := storage.Seed(ctx, store); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	log.WithField("seeded", *seed).Info("storage init complete")
}
