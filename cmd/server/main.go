package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drive/internal/core"
	"drive/internal/server/api"
	"drive/internal/server/config"
	"drive/internal/server/database"
	"drive/internal/server/service"
	"drive/internal/server/session"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"root_label", cfg.RootLabel,
		"default_theme", cfg.DefaultTheme,
		"tree_file", cfg.TreeFile,
		"catalogue", cfg.DatabaseURL != "",
		"strict_navigation", cfg.StrictNavigation,
		"nested_navigation", cfg.NestedNavigation,
	)

	ctx := context.Background()

	// Load the tree once; it never changes while the server runs
	tree, db, err := loadTree(ctx, cfg)
	if err != nil {
		slog.Error("failed to load tree", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}
	files, folders := tree.Count()
	slog.Info("tree loaded", "files", files, "folders", folders)

	// Initialize sessions and service
	sessions := session.NewStore(cfg.RootLabel)
	svc := service.NewDriveService(tree, sessions, service.Options{
		Strict: cfg.StrictNavigation,
		Nested: cfg.NestedNavigation,
	})

	// Start session cleanup; bgCtx also stops router background work
	bgCtx, bgCancel := context.WithCancel(context.Background())
	cleanup := session.NewCleanupService(sessions, cfg.SessionTTL, cfg.SessionCleanupInterval)
	cleanup.Start(bgCtx)

	// Setup HTTP router
	handler, err := api.NewHandler(svc, db, cfg)
	if err != nil {
		slog.Error("failed to create handler", "error", err)
		os.Exit(1)
	}
	e, err := api.SetupRouter(bgCtx, handler, cfg)
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr, "base_url", cfg.BaseURL)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	bgCancel()
	cleanup.Wait()

	slog.Info("server exited cleanly")
}

// loadTree picks the tree source: the Postgres catalogue when configured
// (seeded from TREE_FILE or the sample on first run), else TREE_FILE,
// else the built-in sample.
func loadTree(ctx context.Context, cfg *config.Config) (*core.Filetree, *database.DB, error) {
	seed := core.SampleFiletree()
	if cfg.TreeFile != "" {
		loaded, err := core.LoadTreeFile(cfg.TreeFile)
		if err != nil {
			return nil, nil, err
		}
		seed = loaded
	}

	if cfg.DatabaseURL == "" {
		return seed, nil, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := database.NewRepository(db)
	if err := seedCatalogue(ctx, repo, seed, cfg.TreeFile); err != nil {
		db.Close()
		return nil, nil, err
	}
	tree, err := repo.LoadTree(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return tree, db, nil
}

type catalogueSeeder interface {
	SeedIfEmpty(ctx context.Context, tree *core.Filetree) (bool, error)
}

// seedCatalogue seeds an empty catalogue. A populated catalogue wins over
// TREE_FILE, which is then reported as skipped.
func seedCatalogue(ctx context.Context, repo catalogueSeeder, seed *core.Filetree, treeFile string) error {
	seeded, err := repo.SeedIfEmpty(ctx, seed)
	if err != nil {
		return err
	}
	if !seeded && treeFile != "" {
		slog.Warn("catalogue already populated, ignoring tree file", "tree_file", treeFile)
	}
	return nil
}
