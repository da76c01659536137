package cli

import (
	"fmt"
	"strings"

	"github.com/harulist/haru/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Long: `List todos.

Examples:
  haru list
  haru list --important
  haru list --completed`,
	RunE: runList,
}

var (
	listImportant bool
	listCompleted bool
)

func init() {
	listCmd.Flags().BoolVarP(&listImportant, "important", "i", false, "Only important todos")
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "Only completed todos")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	todos := app.Store.Snapshot().Todos
	var shown []model.Todo
	for _, todo := range todos {
		if listImportant && !todo.IsImportant {
			continue
		}
		if listCompleted && !todo.Completed {
			continue
		}
		shown = append(shown, todo)
	}

	if len(shown) == 0 {
		fmt.Println("No todos found. Add one with: haru add \"Your todo\"")
		return nil
	}

	header := "Todos"
	if user := app.Sessions.Current(); user != nil {
		header = user.Email
	}
	pending := 0
	for _, todo := range shown {
		if !todo.Completed {
			pending++
		}
	}

	fmt.Printf("\n📋 %s (%d pending)\n", header, pending)
	fmt.Println(strings.Repeat("─", 60))
	for _, todo := range shown {
		printTodo(todo)
	}
	fmt.Println()

	return nil
}

func printTodo(todo model.Todo) {
	icon := "[ ]"
	if todo.Completed {
		icon = "[x]"
	}

	mark := "  "
	if todo.IsImportant {
		mark = "★ "
	}

	title := todo.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	content := todo.Content
	if content == model.NonBreakingSpace {
		content = ""
	}
	if len(content) > 24 {
		content = content[:21] + "..."
	}

	fmt.Printf("  %s %s%-8s  %-40s  %-10s  %s\n", icon, mark, shortID(todo.ID), title, todo.Date, content)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
