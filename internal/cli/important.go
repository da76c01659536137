package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importantCmd = &cobra.Command{
	Use:   "important [todo-id]",
	Short: "Toggle a todo's important flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportant,
}

func runImportant(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	todo, err := app.resolveID(args[0])
	if err != nil {
		return err
	}

	if err := app.Store.ToggleImportant(context.Background(), todo.ID); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	updated, err := app.resolveID(todo.ID)
	if err != nil {
		return err
	}
	if updated.IsImportant {
		fmt.Printf("★ Marked important: \"%s\"\n", updated.Title)
	} else {
		fmt.Printf("  No longer important: \"%s\"\n", updated.Title)
	}
	return nil
}
