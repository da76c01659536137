package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [todo-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a todo",
	Long: `Delete a todo by its id (or an unambiguous prefix).

Examples:
  haru delete 1756
  haru rm 1756 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	todo, err := app.resolveID(args[0])
	if err != nil {
		return err
	}

	if app.Config.ConfirmDelete && !deleteForce {
		fmt.Printf("About to delete: \"%s\" (%s)\n", todo.Title, shortID(todo.ID))
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := app.Store.Delete(context.Background(), todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	fmt.Printf("🗑️  Deleted: \"%s\"\n", todo.Title)
	return nil
}
