package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [todo-id]",
	Short: "Edit a todo's title, content, or date",
	Long: `Edit a todo. Fields not given keep their current value.

Examples:
  haru edit 1756 --title "Buy groceries and fruit"
  haru edit 1756 -c "use the market on 5th" -d 2026-09-01`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle   string
	editContent string
	editDate    string
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
	editCmd.Flags().StringVarP(&editDate, "date", "d", "", "New date (YYYY-MM-DD)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	todo, err := app.resolveID(args[0])
	if err != nil {
		return err
	}

	title, content, date := todo.Title, todo.Content, todo.Date
	if cmd.Flags().Changed("title") {
		title = editTitle
	}
	if cmd.Flags().Changed("content") {
		content = editContent
	}
	if cmd.Flags().Changed("date") {
		date = editDate
	}

	if err := app.Store.Edit(context.Background(), todo.ID, title, content, date); err != nil {
		return fmt.Errorf("failed to edit todo: %w", err)
	}

	fmt.Printf("✏️  Updated: \"%s\"\n", title)
	return nil
}
