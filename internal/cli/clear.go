package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every todo",
	Long: `Delete every todo. In account mode the remote documents are removed
first; the local list is only cleared once the server side is empty.`,
	RunE: runClear,
}

var clearForce bool

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	count := len(app.Store.Snapshot().Todos)
	if count == 0 {
		fmt.Println("Nothing to clear.")
		return nil
	}

	if app.Config.ConfirmDelete && !clearForce {
		fmt.Printf("Are you sure you want to delete all %d todos? (y/N): ", count)
		var response string
		_, _ = fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := app.Store.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}

	fmt.Printf("🧹 Cleared %d todos.\n", count)
	return nil
}
