package adminservice

import "github.com/Leopold1975/gis_console/internal/console/domain/models"

type Tab string

const (
	TabUsers       Tab = "users"
	TabRoles       Tab = "roles"
	TabPermissions Tab = "permissions"
	TabDepartments Tab = "departments"
)

type UserForm struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	RoleID       int64  `json:"roleId,omitempty"`       //nolint:tagliatelle
	DepartmentID int64  `json:"departmentId,omitempty"` //nolint:tagliatelle
}

type RoleForm struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions,omitempty"`
}

type DepartmentForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UserRow struct {
	models.User
	RoleLabel       string `json:"role_label"`       //nolint:tagliatelle
	DepartmentLabel string `json:"department_label"` //nolint:tagliatelle
	CanEdit         bool   `json:"can_edit"`         //nolint:tagliatelle
	CanDelete       bool   `json:"can_delete"`       //nolint:tagliatelle
}

type RoleRow struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	CanDelete   bool     `json:"can_delete"` //nolint:tagliatelle
}

type DepartmentRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CanDelete   bool   `json:"can_delete"` //nolint:tagliatelle
}

// MatrixRow is one line of the permissions tab.
type MatrixRow struct {
	Role   string `json:"role"`
	Create bool   `json:"create"`
	Read   bool   `json:"read"`
	Update bool   `json:"update"`
	Delete bool   `json:"delete"`
}

type FormState struct {
	Open    bool     `json:"open"`
	Editing *int64   `json:"editing,omitempty"`
	User    UserForm `json:"user"`
}

// View is everything the admin screen renders.
type View struct {
	Header         string          `json:"header"`
	Tab            Tab             `json:"tab"`
	CanCreate      bool            `json:"can_create"` //nolint:tagliatelle
	Users          []UserRow       `json:"users"`
	Roles          []RoleRow       `json:"roles"`
	Departments    []DepartmentRow `json:"departments"`
	Permissions    []MatrixRow     `json:"permissions"`
	UserForm       FormState       `json:"user_form"`       //nolint:tagliatelle
	RoleFormOpen   bool            `json:"role_form_open"`  //nolint:tagliatelle
	DeptFormOpen   bool            `json:"dept_form_open"`  //nolint:tagliatelle
	RoleForm       RoleForm        `json:"role_form"`       //nolint:tagliatelle
	DepartmentForm DepartmentForm  `json:"department_form"` //nolint:tagliatelle
}
