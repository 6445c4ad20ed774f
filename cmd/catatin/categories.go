package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/naufalhakim/catatin/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx, localOwnerID())
			if err != nil {
				return err
			}

			for _, cat := range categories {
				scope := "user"
				if cat.IsSystem() {
					scope = "system"
				}
				cmd.Printf("%4d  %-20s %-8s %-18s %s\n", cat.ID, cat.Name, scope, cat.Icon, cat.Color)
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			icon, _ := cmd.Flags().GetString("icon")
			color, _ := cmd.Flags().GetString("color")

			created, err := store.CreateCategory(ctx, localOwnerID(), args[0], icon, color)
			if err != nil {
				return err
			}
			cmd.Printf("Created category %q (id %d)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().String("icon", model.DefaultCategoryIcon, "category icon name")
	cmd.Flags().String("color", "", "hex color (defaults to a stable color derived from the name)")
	return cmd
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your categories",
		Long: `Delete a category you created. Expenses keep their rows and simply
become uncategorized. System categories cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCategory(ctx, id, localOwnerID()); err != nil {
				return err
			}
			cmd.Printf("Deleted category %d\n", id)
			return nil
		},
	}
}
