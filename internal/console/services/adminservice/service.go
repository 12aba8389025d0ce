package adminservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	PermCreate = "create"
	PermUpdate = "update"
	PermDelete = "delete"

	loadErrorAlert = "Error loading data. Please check your login."
)

var (
	ErrUnknownTab    = errors.New("unknown tab")
	ErrProtectedRole = errors.New("built-in roles cannot be deleted")
	ErrNotPermitted  = errors.New("action not offered for current user")
	ErrNotConfirmed  = errors.New("action was not confirmed")
)

type Client interface {
	ListUsers(context.Context, ...gisapi.RequestEditorFn) ([]models.User, error)
	ListRoles(context.Context, ...gisapi.RequestEditorFn) ([]models.Role, error)
	ListDepartments(context.Context, ...gisapi.RequestEditorFn) ([]models.Department, error)
	Signup(context.Context, gisapi.SignupRequest, ...gisapi.RequestEditorFn) error
	UpdateUser(context.Context, int64, gisapi.UpdateUserRequest, ...gisapi.RequestEditorFn) error
	DeleteUser(context.Context, int64, ...gisapi.RequestEditorFn) error
	CreateRole(context.Context, gisapi.RoleRequest, ...gisapi.RequestEditorFn) error
	UpdateRole(context.Context, int64, gisapi.RoleRequest, ...gisapi.RequestEditorFn) error
	DeleteRole(context.Context, int64, ...gisapi.RequestEditorFn) error
	CreateDepartment(context.Context, gisapi.DepartmentRequest, ...gisapi.RequestEditorFn) error
	UpdateDepartment(context.Context, int64, gisapi.DepartmentRequest, ...gisapi.RequestEditorFn) error
	DeleteDepartment(context.Context, int64, ...gisapi.RequestEditorFn) error
}

type Auth interface {
	HasPermission(string) bool
	User() *models.SessionUser
}

type Notifier interface {
	Alert(string)
}

// Confirmer asks the operator before a destructive request is sent.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Panel is the admin screen of one profile. Every mutation is followed by a
// reload of all three datasets.
type Panel struct {
	client Client
	auth   Auth
	notify Notifier
	lg     logger.Logger
	cfg    config.Admin

	mu          sync.Mutex
	tab         Tab
	users       []models.User
	roles       []models.Role
	departments []models.Department

	userFormOpen bool
	editingUser  *models.User
	userForm     UserForm

	roleFormOpen bool
	roleForm     RoleForm

	deptFormOpen bool
	deptForm     DepartmentForm
}

func New(client Client, auth Auth, notify Notifier, cfg config.Admin, lg logger.Logger) *Panel {
	if len(cfg.PermissionsMatrix) == 0 {
		cfg.PermissionsMatrix = config.DefaultPermissionsMatrix()
	}

	if cfg.ProtectedRoleMaxID <= 0 {
		cfg.ProtectedRoleMaxID = config.DefaultProtectedRoleMaxID
	}

	return &Panel{ //nolint:exhaustruct
		client: client,
		auth:   auth,
		notify: notify,
		lg:     lg,
		cfg:    cfg,
		tab:    TabUsers,
	}
}

func (p *Panel) SetTab(t Tab) error {
	switch t {
	case TabUsers, TabRoles, TabPermissions, TabDepartments:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTab, t)
	}

	p.mu.Lock()
	p.tab = t
	p.mu.Unlock()

	return nil
}

// Load fetches users, roles and departments concurrently. On failure the
// previous datasets stay in place.
func (p *Panel) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.loadLocked(ctx)
}

func (p *Panel) loadLocked(ctx context.Context) error {
	var (
		users []models.User
		roles []models.Role
		depts []models.Department
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		users, err = p.client.ListUsers(gctx)

		return err
	})
	g.Go(func() error {
		var err error
		roles, err = p.client.ListRoles(gctx)

		return err
	})
	g.Go(func() error {
		var err error
		depts, err = p.client.ListDepartments(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		p.lg.Errorf("load admin data error: %s", err.Error())
		p.notify.Alert(loadErrorAlert)

		return fmt.Errorf("load admin data error: %w", err)
	}

	p.users, p.roles, p.departments = users, roles, depts

	return nil
}

// reload runs after a successful mutation. A failed reload is already alerted.
func (p *Panel) reload(ctx context.Context) {
	_ = p.loadLocked(ctx)
}

// Users

func (p *Panel) OpenUserForm() {
	p.mu.Lock()
	p.userFormOpen = true
	p.mu.Unlock()
}

// EditUser opens the form prefilled from u; the password is never prefilled.
func (p *Panel) EditUser(u models.User) error {
	if !p.CanEdit() {
		return ErrNotPermitted
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	edited := u
	p.editingUser = &edited
	p.userForm = UserForm{ //nolint:exhaustruct
		Username:     u.Username,
		Email:        u.Email,
		RoleID:       u.RoleID,
		DepartmentID: u.DepartmentID,
	}
	p.userFormOpen = true

	return nil
}

func (p *Panel) CloseUserForm() {
	p.mu.Lock()
	p.userFormOpen = false
	p.editingUser = nil
	p.mu.Unlock()
}

// SaveUser creates a user through signup, or updates the user being edited.
func (p *Panel) SaveUser(ctx context.Context, form UserForm) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	need := PermCreate
	if p.editingUser != nil {
		need = PermUpdate
	}

	if !p.auth.HasPermission(need) {
		return ErrNotPermitted
	}

	p.userForm = form
	p.userFormOpen = true

	var (
		err     error
		success string
	)

	if p.editingUser != nil {
		err = p.client.UpdateUser(ctx, p.editingUser.ID, gisapi.UpdateUserRequest{
			Username:     form.Username,
			Email:        form.Email,
			RoleID:       form.RoleID,
			DepartmentID: form.DepartmentID,
		})
		success = "User updated successfully!"
	} else {
		err = p.client.Signup(ctx, gisapi.SignupRequest(form))
		success = "User created successfully!"
	}

	if err != nil {
		p.notify.Alert(gisapi.MessageOf(err, "Error saving user"))

		return fmt.Errorf("save user error: %w", err)
	}

	p.notify.Alert(success)

	p.userFormOpen = false
	p.editingUser = nil
	p.userForm = UserForm{} //nolint:exhaustruct

	p.reload(ctx)

	return nil
}

func (p *Panel) DeleteUser(ctx context.Context, id int64, c Confirmer) error {
	if !p.CanDeleteUser() {
		return ErrNotPermitted
	}

	if !c.Confirm("Delete this user?") {
		return ErrNotConfirmed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.DeleteUser(ctx, id); err != nil {
		p.lg.Errorf("delete user %d error: %s", id, err.Error())
		p.notify.Alert("Error deleting user")

		return fmt.Errorf("delete user error: %w", err)
	}

	p.notify.Alert("User deleted!")
	p.reload(ctx)

	return nil
}

// Roles

func (p *Panel) OpenRoleForm() {
	p.mu.Lock()
	p.roleFormOpen = true
	p.mu.Unlock()
}

func (p *Panel) CloseRoleForm() {
	p.mu.Lock()
	p.roleFormOpen = false
	p.mu.Unlock()
}

func (p *Panel) CreateRole(ctx context.Context, form RoleForm) error {
	if !p.CanCreate() {
		return ErrNotPermitted
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.roleForm = form
	p.roleFormOpen = true

	if err := p.client.CreateRole(ctx, gisapi.RoleRequest(form)); err != nil {
		p.lg.Errorf("create role error: %s", err.Error())
		p.notify.Alert("Error creating role")

		return fmt.Errorf("create role error: %w", err)
	}

	p.notify.Alert("Role created successfully!")

	p.roleFormOpen = false
	p.roleForm = RoleForm{} //nolint:exhaustruct

	p.reload(ctx)

	return nil
}

func (p *Panel) UpdateRole(ctx context.Context, id int64, form RoleForm) error {
	if !p.CanEdit() {
		return ErrNotPermitted
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.UpdateRole(ctx, id, gisapi.RoleRequest(form)); err != nil {
		p.lg.Errorf("update role %d error: %s", id, err.Error())
		p.notify.Alert(gisapi.MessageOf(err, "Error updating role"))

		return fmt.Errorf("update role error: %w", err)
	}

	p.notify.Alert("Role updated successfully!")
	p.reload(ctx)

	return nil
}

func (p *Panel) DeleteRole(ctx context.Context, id int64, c Confirmer) error {
	if p.protected(id) {
		return ErrProtectedRole
	}

	if !p.auth.HasPermission(PermDelete) {
		return ErrNotPermitted
	}

	if !c.Confirm("Delete this role? Users with this role will be affected.") {
		return ErrNotConfirmed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.DeleteRole(ctx, id); err != nil {
		p.lg.Errorf("delete role %d error: %s", id, err.Error())
		p.notify.Alert("Error deleting role")

		return fmt.Errorf("delete role error: %w", err)
	}

	p.notify.Alert("Role deleted!")
	p.reload(ctx)

	return nil
}

// Departments

func (p *Panel) OpenDepartmentForm() {
	p.mu.Lock()
	p.deptFormOpen = true
	p.mu.Unlock()
}

func (p *Panel) CloseDepartmentForm() {
	p.mu.Lock()
	p.deptFormOpen = false
	p.mu.Unlock()
}

func (p *Panel) CreateDepartment(ctx context.Context, form DepartmentForm) error {
	if !p.CanCreate() {
		return ErrNotPermitted
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.deptForm = form
	p.deptFormOpen = true

	if err := p.client.CreateDepartment(ctx, gisapi.DepartmentRequest(form)); err != nil {
		p.lg.Errorf("create department error: %s", err.Error())
		p.notify.Alert("Error creating department")

		return fmt.Errorf("create department error: %w", err)
	}

	p.notify.Alert("Department created successfully!")

	p.deptFormOpen = false
	p.deptForm = DepartmentForm{} //nolint:exhaustruct

	p.reload(ctx)

	return nil
}

func (p *Panel) UpdateDepartment(ctx context.Context, id int64, form DepartmentForm) error {
	if !p.CanEdit() {
		return ErrNotPermitted
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.UpdateDepartment(ctx, id, gisapi.DepartmentRequest(form)); err != nil {
		p.lg.Errorf("update department %d error: %s", id, err.Error())
		p.notify.Alert(gisapi.MessageOf(err, "Error updating department"))

		return fmt.Errorf("update department error: %w", err)
	}

	p.notify.Alert("Department updated successfully!")
	p.reload(ctx)

	return nil
}

func (p *Panel) DeleteDepartment(ctx context.Context, id int64, c Confirmer) error {
	if !p.CanDeleteDepartment() {
		return ErrNotPermitted
	}

	if !c.Confirm("Delete this department?") {
		return ErrNotConfirmed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.DeleteDepartment(ctx, id); err != nil {
		p.lg.Errorf("delete department %d error: %s", id, err.Error())
		p.notify.Alert("Error deleting department")

		return fmt.Errorf("delete department error: %w", err)
	}

	p.notify.Alert("Department deleted!")
	p.reload(ctx)

	return nil
}

// Affordances

func (p *Panel) CanCreate() bool { return p.auth.HasPermission(PermCreate) }

func (p *Panel) CanEdit() bool { return p.auth.HasPermission(PermUpdate) }

func (p *Panel) CanDeleteUser() bool { return p.auth.HasPermission(PermDelete) }

func (p *Panel) CanDeleteDepartment() bool { return p.auth.HasPermission(PermDelete) }

// CanDeleteRole offers deletion only above the built-in id range.
func (p *Panel) CanDeleteRole(r models.Role) bool {
	return !p.protected(r.ID) && p.auth.HasPermission(PermDelete)
}

func (p *Panel) protected(id int64) bool {
	return id <= p.cfg.ProtectedRoleMaxID
}

// Matrix renders the configured reference table. It is not derived from the
// live role records.
func (p *Panel) Matrix() []MatrixRow {
	rows := make([]MatrixRow, 0, len(p.cfg.PermissionsMatrix))

	for _, r := range p.cfg.PermissionsMatrix {
		rows = append(rows, MatrixRow{
			Role:   r.Role,
			Create: slices.Contains(r.Capabilities, "Create"),
			Read:   slices.Contains(r.Capabilities, "Read"),
			Update: slices.Contains(r.Capabilities, "Update"),
			Delete: slices.Contains(r.Capabilities, "Delete"),
		})
	}

	return rows
}

func (p *Panel) Header() string {
	u := p.auth.User()
	if u == nil {
		return "Not signed in"
	}

	return fmt.Sprintf("Logged in as: %s (%s)", u.Username, u.Role)
}

// User returns a loaded user record by id.
func (p *Panel) User(id int64) (models.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if u.ID == id {
			return u, true
		}
	}

	return models.User{}, false //nolint:exhaustruct
}

func (p *Panel) View() View {
	canEdit := p.CanEdit()
	canDelete := p.auth.HasPermission(PermDelete)
	header := p.Header()
	canCreate := p.CanCreate()

	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{ //nolint:exhaustruct
		Header:         header,
		Tab:            p.tab,
		CanCreate:      canCreate,
		Users:          make([]UserRow, 0, len(p.users)),
		Roles:          make([]RoleRow, 0, len(p.roles)),
		Departments:    make([]DepartmentRow, 0, len(p.departments)),
		Permissions:    p.Matrix(),
		RoleFormOpen:   p.roleFormOpen,
		DeptFormOpen:   p.deptFormOpen,
		RoleForm:       p.roleForm,
		DepartmentForm: p.deptForm,
	}

	for _, u := range p.users {
		v.Users = append(v.Users, UserRow{
			User:            u,
			RoleLabel:       orDefault(u.Role, "No role"),
			DepartmentLabel: orDefault(u.Department, "N/A"),
			CanEdit:         canEdit,
			CanDelete:       canDelete,
		})
	}

	for _, r := range p.roles {
		v.Roles = append(v.Roles, RoleRow{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Permissions: r.VisiblePermissions(),
			CanDelete:   canDelete && !p.protected(r.ID),
		})
	}

	for _, d := range p.departments {
		v.Departments = append(v.Departments, DepartmentRow{
			ID:          d.ID,
			Name:        d.Name,
			Description: orDefault(d.Description, "N/A"),
			CanDelete:   canDelete,
		})
	}

	v.UserForm = FormState{Open: p.userFormOpen, User: p.userForm} //nolint:exhaustruct
	if p.editingUser != nil {
		id := p.editingUser.ID
		v.UserForm.Editing = &id
	}

	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
