package repositories

// ChangeLogRepository stores the append-only audit trail as text lines.
type ChangeLogRepository interface {
	// Append adds one line; existing lines are never rewritten.
	Append(line string) error
	// Lines returns every stored line in chronological order. A log that does
	// not exist yet yields no lines and no error.
	Lines() ([]string, error)
	// Truncate empties the log.
	Truncate() error
}
