package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harulist/haru/internal/store"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new todo",
	Long: `Add a new todo.

Examples:
  haru add "Buy groceries"
  haru add "Meeting with team" -c "bring the Q3 notes"
  haru add "Dentist" -d 2026-09-15`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addContent string
	addDate    string
)

func init() {
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Todo content/notes")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Date (YYYY-MM-DD, defaults to today)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	title := strings.Join(args, " ")
	date := addDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	todo, err := app.Store.Add(context.Background(), title, addContent, date)
	if err != nil {
		if errors.Is(err, store.ErrRecordMissing) {
			return fmt.Errorf("account record missing on the server; try logging in again")
		}
		return fmt.Errorf("failed to add todo: %w", err)
	}

	fmt.Printf("✓ Added: \"%s\" (%s)\n", todo.Title, shortID(todo.ID))
	return nil
}
