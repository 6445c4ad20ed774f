package main

import (
	"github.com/spf13/cobra"

	"github.com/naufalhakim/catatin/internal/tui"
)

func quickaddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "quickadd",
		Aliases: []string{"add"},
		Short:   "Interactively add expenses from free text",
		Long: `Open the quick-add flow: type what you spent in your own words,
review the parsed expenses, fix anything that looks off, then save them all
in one batch.`,
		RunE: runQuickadd,
	}
}

func runQuickadd(cmd *cobra.Command, _ []string) error {
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

	return tui.Run(ctx, eng, localOwnerID())
}
