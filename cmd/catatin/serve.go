package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naufalhakim/catatin/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the JSON API used by the web frontend: parsing, review commits,
expense and category management, the dashboard, and exports.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8422)")
	cmd.Flags().Bool("dev", false, "development mode: no auth, all requests map to the dev user")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.dev_mode", cmd.Flags().Lookup("dev"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, closeClient, err := initEngine(ctx, store)
	if err != nil {
		return err
	}
	defer closeClient()

	authenticator, err := initAuthenticator()
	if err != nil {
		return err
	}

	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8422"
	}

	srv := server.New(addr, eng, authenticator, cmdLogger())
	return srv.ListenAndServe(ctx)
}
