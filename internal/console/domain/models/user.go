package models

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	RoleID       int64  `json:"role_id,omitempty"`       //nolint:tagliatelle
	Department   string `json:"department,omitempty"`
	DepartmentID int64  `json:"department_id,omitempty"` //nolint:tagliatelle
}

// SessionUser is the user snapshot kept next to the access token.
// A nil Permissions means the record carried no permission list at all.
type SessionUser struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}
