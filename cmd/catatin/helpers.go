package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/naufalhakim/catatin/internal/auth"
	"github.com/naufalhakim/catatin/internal/config"
	"github.com/naufalhakim/catatin/internal/engine"
	"github.com/naufalhakim/catatin/internal/extract"
	"github.com/naufalhakim/catatin/internal/llm"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/catatin/catatin.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// initEngine wires the extraction pipeline on top of an open store. The
// returned cleanup closes the model client.
func initEngine(ctx context.Context, store *storage.SQLiteStorage) (*engine.Engine, func(), error) {
	client, err := llm.NewClient(ctx, config.LoadLLMConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	extractor := extract.NewExtractor(client, store, slog.Default())
	eng := engine.New(extractor, store, slog.Default())
	return eng, func() { _ = client.Close() }, nil
}

// initAuthenticator picks the request authenticator from config. Dev mode
// maps everything to the built-in development user.
func initAuthenticator() (auth.Authenticator, error) {
	if viper.GetBool("server.dev_mode") {
		return auth.DevAuthenticator{}, nil
	}
	return auth.NewTokenAuthenticator(
		viper.GetString("server.auth_token"),
		viper.GetString("server.owner_id"))
}

// cmdLogger returns the process-wide logger configured by initConfig.
func cmdLogger() *slog.Logger {
	return slog.Default()
}

// localOwnerID is the identity used by local CLI commands.
func localOwnerID() string {
	if v := viper.GetString("owner_id"); v != "" {
		return v
	}
	return model.DevOwnerID
}
