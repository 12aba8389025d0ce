package gisapi

import "github.com/Leopold1975/gis_console/internal/console/domain/models"

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SigninResponse is the access token plus the user fields the service sends next to it.
type SigninResponse struct {
	AccessToken string `json:"accessToken"` //nolint:tagliatelle
	models.SessionUser
}

type SignupRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RoleID       int64  `json:"roleId,omitempty"`       //nolint:tagliatelle
	DepartmentID int64  `json:"departmentId,omitempty"` //nolint:tagliatelle
}

type UpdateUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	RoleID       int64  `json:"roleId,omitempty"`       //nolint:tagliatelle
	DepartmentID int64  `json:"departmentId,omitempty"` //nolint:tagliatelle
}

type RoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions,omitempty"`
}

type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGeometryRequest carries the coordinate structure in EPSG:4326.
type CreateGeometryRequest struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	GeometryType models.GeometryType `json:"geometryType"` //nolint:tagliatelle
	Coordinates  any                 `json:"coordinates"`
	Metadata     map[string]string   `json:"metadata"`
}

type UpdateGeometryRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
