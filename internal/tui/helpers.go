package tui

// truncate shortens a string to max length with ellipsis. Widths too
// narrow for an ellipsis degrade to a plain cut.
func truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
