package gisstub

import (
	"errors"
	"slices"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrProtected     = errors.New("built-in record")
)

// BuiltinRoles are seeded with ids 1..4 and cannot be removed.
func BuiltinRoles() []models.Role {
	return []models.Role{
		{ID: 1, Name: "Admin", Description: "Full access", Permissions: []string{"create", "read", "update", "delete"}},
		{ID: 2, Name: "Dept. HOD", Description: "Head of department", Permissions: []string{"create", "read", "update"}},
		{ID: 3, Name: "Surveyor", Description: "Field surveyor", Permissions: []string{"create", "read"}},
		{ID: 4, Name: "QC", Description: "Quality control", Permissions: []string{"read", "update", "delete"}},
	}
}

type userRecord struct {
	models.User
	PasswordHash []byte
}

// Store keeps every resource in memory behind one lock.
type Store struct {
	mu sync.RWMutex

	users       []userRecord
	roles       []models.Role
	departments []models.Department
	geometries  []models.Geometry

	nextUser, nextRole, nextDept, nextGeom int64
}

func NewStore(adminUsername, adminPassword string) (*Store, error) {
	s := &Store{ //nolint:exhaustruct
		roles:    BuiltinRoles(),
		nextRole: int64(len(BuiltinRoles())),
	}

	if adminUsername != "" {
		if _, err := s.CreateUser(models.User{Username: adminUsername, RoleID: 1}, adminPassword); err != nil { //nolint:exhaustruct
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) CreateUser(u models.User, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.users, func(r userRecord) bool { return r.Username == u.Username }) {
		return models.User{}, ErrAlreadyExists
	}

	s.nextUser++
	u.ID = s.nextUser
	s.users = append(s.users, userRecord{User: u, PasswordHash: hash})

	return s.resolveLocked(u), nil
}

// Authenticate checks the password and returns the user with its role permissions.
func (s *Store) Authenticate(username, password string) (models.User, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(r userRecord) bool { return r.Username == username })
	if i < 0 {
		return models.User{}, nil, ErrNotFound
	}

	rec := s.users[i]

	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return models.User{}, nil, err //nolint:wrapcheck
	}

	var perms []string

	if j := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == rec.RoleID }); j >= 0 {
		perms = slices.Clone(s.roles[j].Permissions)
	}

	return s.resolveLocked(rec.User), perms, nil
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, r := range s.users {
		out = append(out, s.resolveLocked(r.User))
	}

	return out
}

func (s *Store) User(id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.userIndexLocked(id)
	if i < 0 {
		return models.User{}, ErrNotFound
	}

	return s.resolveLocked(s.users[i].User), nil
}

func (s *Store) UpdateUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexLocked(u.ID)
	if i < 0 {
		return ErrNotFound
	}

	s.users[i].User = u

	return nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	s.users = slices.Delete(s.users, i, i+1)

	return nil
}

func (s *Store) userIndexLocked(id int64) int {
	return slices.IndexFunc(s.users, func(r userRecord) bool { return r.ID == id })
}

// resolveLocked fills the display names the service sends next to ids.
func (s *Store) resolveLocked(u models.User) models.User {
	u.Role, u.Department = "", ""

	if i := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == u.RoleID }); i >= 0 {
		u.Role = s.roles[i].Name
	}

	if i := slices.IndexFunc(s.departments, func(d models.Department) bool { return d.ID == u.DepartmentID }); i >= 0 {
		u.Department = s.departments[i].Name
	}

	return u
}

func (s *Store) Roles() []models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.roles)
}

func (s *Store) CreateRole(r models.Role) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.roles, func(e models.Role) bool { return e.Name == r.Name }) {
		return models.Role{}, ErrAlreadyExists
	}

	s.nextRole++
	r.ID = s.nextRole
	s.roles = append(s.roles, r)

	return r, nil
}

func (s *Store) UpdateRole(r models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.roles, func(e models.Role) bool { return e.ID == r.ID })
	if i < 0 {
		return ErrNotFound
	}

	s.roles[i] = r

	return nil
}

func (s *Store) DeleteRole(id int64) error {
	if id <= int64(len(BuiltinRoles())) {
		return ErrProtected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.roles, func(e models.Role) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}

	s.roles = slices.Delete(s.roles, i, i+1)

	return nil
}

func (s *Store) Departments() []models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.departments)
}

func (s *Store) CreateDepartment(d models.Department) (models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.departments, func(e models.Department) bool { return e.Name == d.Name }) {
		return models.Department{}, ErrAlreadyExists
	}

	s.nextDept++
	d.ID = s.nextDept
	s.departments = append(s.departments, d)

	return d, nil
}

func (s *Store) UpdateDepartment(d models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.departments, func(e models.Department) bool { return e.ID == d.ID })
	if i < 0 {
		return ErrNotFound
	}

	s.departments[i] = d

	return nil
}

func (s *Store) DeleteDepartment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.departments, func(e models.Department) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}

	s.departments = slices.Delete(s.departments, i, i+1)

	return nil
}

func (s *Store) Geometries() []models.Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.geometries)
}

func (s *Store) Geometry(id int64) (models.Geometry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.geomIndexLocked(id)
	if i < 0 {
		return models.Geometry{}, ErrNotFound
	}

	return s.geometries[i], nil
}

func (s *Store) CreateGeometry(g models.Geometry) models.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextGeom++
	g.ID = s.nextGeom
	s.geometries = append(s.geometries, g)

	return g
}

// UpdateGeometry changes the attributes of a record, never its shape.
func (s *Store) UpdateGeometry(id int64, name, description string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.geomIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	s.geometries[i].Name = name
	s.geometries[i].Description = description

	if metadata != nil {
		s.geometries[i].Metadata = metadata
	}

	return nil
}

func (s *Store) DeleteGeometry(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.geomIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	s.geometries = slices.Delete(s.geometries, i, i+1)

	return nil
}

func (s *Store) Stats() models.GeometryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.GeometryStats{Total: len(s.geometries), ByType: map[string]int{}}
	for _, g := range s.geometries {
		stats.ByType[string(g.GeometryType)]++
	}

	return stats
}

func (s *Store) geomIndexLocked(id int64) int {
	return slices.IndexFunc(s.geometries, func(g models.Geometry) bool { return g.ID == id })
}
