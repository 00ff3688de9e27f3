// Command catalog-import loads a JSON or YAML flavor file into the flavor store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/okian/hookah/internal/adapters/catalog"
	"github.com/okian/hookah/internal/adapters/repository"
	app "github.com/okian/hookah/internal/app"
	"github.com/okian/hookah/internal/config"
	"github.com/okian/hookah/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "catalog-import:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("catalog-import", flag.ContinueOnError)
	dataDir := fs.String("data", cfg.DataDir, "data directory holding flavors.json unless flavors_file is set")
	file := fs.String("file", cfg.CatalogSeedFile, "flavor file to import (.json, .yaml or .yml)")
	replace := fs.Bool("replace", false, "overwrite the store instead of adding new ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("catalog-import")

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return err
	}
	flavors, err := catalog.LoadSeed(*file)
	if err != nil {
		return err
	}

	cfg.DataDir = *dataDir
	store := repository.NewFlavorStore(cfg.FlavorsPath())
	svc := app.New(store, repository.NewMixStore(cfg.MixesPath()), nil, app.WithLogger(log))
	n, err := svc.ImportFlavors(ctx, flavors, *replace)
	if err != nil {
		return err
	}

	log.Info(ctx, "flavors imported",
		logger.String("file", *file),
		logger.Int("read", len(flavors)),
		logger.Int("written", n),
		logger.Bool("replace", *replace),
	)
	return nil
}
