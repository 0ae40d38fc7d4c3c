package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table     string
	ID        string
	Email     string
	Password  string
	Tokens    string
	CreatedAt string
	UpdatedAt string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:     "users.account",
	ID:        "id",
	Email:     "email",
	Password:  "passwordhash",
	Tokens:    "tokens",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.Email, t.Password, t.Tokens, t.CreatedAt, t.UpdatedAt}
}
