package database

// NodeRow is one entry of the drive_nodes catalogue table.
type NodeRow struct {
	ID       int64
	ParentID *int64 // nil for top-level entries
	Position int
	Kind     string
	Name     string
	Link     *string // nil for folders
}
