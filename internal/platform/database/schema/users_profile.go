package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table      string
	UserID     string
	Name       string
	Email      string
	Role       string
	RollNumber string
	Batch      string
	Phone      string
	CreatedAt  string
	UpdatedAt  string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:      "users.profile",
	UserID:     "userid",
	Name:       "name",
	Email:      "email",
	Role:       "role",
	RollNumber: "rollnumber",
	Batch:      "batch",
	Phone:      "phone",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{
		t.UserID, t.Name, t.Email, t.Role, t.RollNumber,
		t.Batch, t.Phone, t.CreatedAt, t.UpdatedAt,
	}
}
