package gisapi

import (
	"context"
	"net/http"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
)

// Auth

func (c *Client) Signin(ctx context.Context, body SigninRequest, reqEditors ...RequestEditorFn) (SigninResponse, error) {
	var resp SigninResponse

	err := c.do(ctx, http.MethodPost, "/auth/signin", body, &resp, reqEditors...)

	return resp, err
}

func (c *Client) Signup(ctx context.Context, body SignupRequest, reqEditors ...RequestEditorFn) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", body, nil, reqEditors...)
}

// Users

func (c *Client) ListUsers(ctx context.Context, reqEditors ...RequestEditorFn) ([]models.User, error) {
	var users []models.User

	err := c.do(ctx, http.MethodGet, "/users", nil, &users, reqEditors...)

	return users, err
}

func (c *Client) GetUser(ctx context.Context, id int64, reqEditors ...RequestEditorFn) (models.User, error) {
	var u models.User

	p, err := idPath("users", id)
	if err != nil {
		return u, err
	}

	err = c.do(ctx, http.MethodGet, p, nil, &u, reqEditors...)

	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id int64, body UpdateUserRequest, reqEditors ...RequestEditorFn) error {
	p, err := idPath("users", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, p, body, nil, reqEditors...)
}

func (c *Client) DeleteUser(ctx context.Context, id int64, reqEditors ...RequestEditorFn) error {
	p, err := idPath("users", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, p, nil, nil, reqEditors...)
}

// Roles

func (c *Client) ListRoles(ctx context.Context, reqEditors ...RequestEditorFn) ([]models.Role, error) {
	var roles []models.Role

	err := c.do(ctx, http.MethodGet, "/roles", nil, &roles, reqEditors...)

	return roles, err
}

func (c *Client) CreateRole(ctx context.Context, body RoleRequest, reqEditors ...RequestEditorFn) error {
	return c.do(ctx, http.MethodPost, "/roles", body, nil, reqEditors...)
}

func (c *Client) UpdateRole(ctx context.Context, id int64, body RoleRequest, reqEditors ...RequestEditorFn) error {
	p, err := idPath("roles", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, p, body, nil, reqEditors...)
}

func (c *Client) DeleteRole(ctx context.Context, id int64, reqEditors ...RequestEditorFn) error {
	p, err := idPath("roles", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, p, nil, nil, reqEditors...)
}

// Departments

func (c *Client) ListDepartments(ctx context.Context, reqEditors ...RequestEditorFn) ([]models.Department, error) {
	var depts []models.Department

	err := c.do(ctx, http.MethodGet, "/departments", nil, &depts, reqEditors...)

	return depts, err
}

func (c *Client) CreateDepartment(ctx context.Context, body DepartmentRequest, reqEditors ...RequestEditorFn) error {
	return c.do(ctx, http.MethodPost, "/departments", body, nil, reqEditors...)
}

func (c *Client) UpdateDepartment(ctx context.Context, id int64, body DepartmentRequest,
	reqEditors ...RequestEditorFn,
) error {
	p, err := idPath("departments", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, p, body, nil, reqEditors...)
}

func (c *Client) DeleteDepartment(ctx context.Context, id int64, reqEditors ...RequestEditorFn) error {
	p, err := idPath("departments", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, p, nil, nil, reqEditors...)
}

// Geometries

func (c *Client) ListGeometries(ctx context.Context, reqEditors ...RequestEditorFn) ([]models.Geometry, error) {
	var geoms []models.Geometry

	err := c.do(ctx, http.MethodGet, "/geometries", nil, &geoms, reqEditors...)

	return geoms, err
}

func (c *Client) GetGeometry(ctx context.Context, id int64, reqEditors ...RequestEditorFn) (models.Geometry, error) {
	var g models.Geometry

	p, err := idPath("geometries", id)
	if err != nil {
		return g, err
	}

	err = c.do(ctx, http.MethodGet, p, nil, &g, reqEditors...)

	return g, err
}

func (c *Client) CreateGeometry(ctx context.Context, body CreateGeometryRequest,
	reqEditors ...RequestEditorFn,
) (models.Geometry, error) {
	var g models.Geometry

	err := c.do(ctx, http.MethodPost, "/geometries", body, &g, reqEditors...)

	return g, err
}

func (c *Client) UpdateGeometry(ctx context.Context, id int64, body UpdateGeometryRequest,
	reqEditors ...RequestEditorFn,
) error {
	p, err := idPath("geometries", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, p, body, nil, reqEditors...)
}

func (c *Client) DeleteGeometry(ctx context.Context, id int64, reqEditors ...RequestEditorFn) error {
	p, err := idPath("geometries", id)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, p, nil, nil, reqEditors...)
}

func (c *Client) GeometryStats(ctx context.Context, reqEditors ...RequestEditorFn) (models.GeometryStats, error) {
	var stats models.GeometryStats

	err := c.do(ctx, http.MethodGet, "/geometries/stats", nil, &stats, reqEditors...)

	return stats, err
}
