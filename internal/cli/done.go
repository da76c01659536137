package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [todo-id]",
	Short: "Toggle a todo's completed state",
	Long: `Toggle a todo between pending and completed. Id prefixes are accepted
as long as they are unambiguous.

Examples:
  haru done 17561234
  haru done 1756`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	todo, err := app.resolveID(args[0])
	if err != nil {
		return err
	}

	if err := app.Store.ToggleCompleted(context.Background(), todo.ID); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	// Re-read: in account mode the remote value wins, not the local flip
	updated, err := app.resolveID(todo.ID)
	if err != nil {
		return err
	}
	if updated.Completed {
		fmt.Printf("✓ Completed: \"%s\"\n", updated.Title)
	} else {
		fmt.Printf("○ Reopened: \"%s\"\n", updated.Title)
	}
	return nil
}
