package schema

// TodoItemTable represents the 'todos.item' table
type TodoItemTable struct {
	Table       string
	ID          string
	Text        string
	Completed   string
	CompletedAt string
	Creator     string
	CreatedAt   string
}

// TodoItem is the schema definition for todos.item
var TodoItem = TodoItemTable{
	Table:       "todos.item",
	ID:          "id",
	Text:        "text",
	Completed:   "completed",
	CompletedAt: "completedat",
	Creator:     "creatorid",
	CreatedAt:   "createdat",
}

func (t TodoItemTable) Columns() []string {
	return []string{t.ID, t.Text, t.Completed, t.CompletedAt, t.Creator, t.CreatedAt}
}
