package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Parse expense text without saving anything",
		Long: `Run the extraction pipeline on a piece of text and print the candidates
it produces. Nothing is written except the audit log entry. Useful for
checking how a phrasing will be interpreted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().Bool("json", false, "print candidates as JSON")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

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

	candidates, err := eng.Parse(ctx, localOwnerID(), text, time.Now())
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out, marshalErr := json.MarshalIndent(candidates, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		cmd.Println(string(out))
		return nil
	}

	if len(candidates) == 0 {
		cmd.Println("No expenses found.")
		return nil
	}

	for i, c := range candidates {
		flag := ""
		if c.NeedsReview {
			flag = "  (needs review)"
		}
		cmd.Printf("%d. %-24s Rp%-12d %-14s %s  %d%%%s\n",
			i+1, c.Item, c.Amount, c.CategoryLabel, c.Date,
			int(c.Confidence*100), flag)
	}
	return nil
}
