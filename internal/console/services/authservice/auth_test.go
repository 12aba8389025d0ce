package authservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/memory"
	"github.com/Leopold1975/gis_console/internal/console/services/authservice"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp gisapi.SigninResponse
	err  error
}

func (f fakeClient) Signin(context.Context, gisapi.SigninRequest, ...gisapi.RequestEditorFn) (gisapi.SigninResponse, error) {
	return f.resp, f.err
}

func newProvider(t *testing.T, store authservice.Store, c authservice.Client) *authservice.Provider {
	t.Helper()

	p := authservice.New(store, "profile-1", logger.NewNop())
	p.SetClient(c)
	require.NoError(t, p.Load(context.Background()))

	return p
}

func TestSigninPersistsTokenAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	p := newProvider(t, store, fakeClient{resp: gisapi.SigninResponse{
		AccessToken: "tok",
		SessionUser: models.SessionUser{ID: 1, Username: "admin", Role: "Admin", Permissions: []string{"create"}},
	}})

	res := p.Signin(ctx, gisapi.SigninRequest{Username: "admin", Password: "pw"})
	require.True(t, res.Success)
	require.True(t, p.Authenticated())
	assert.Equal(t, "admin", p.User().Username)

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	// A fresh provider over the same store hydrates without any network call.
	reloaded := newProvider(t, store, nil)
	require.True(t, reloaded.Authenticated())
	assert.True(t, reloaded.HasPermission("create"))
}

func TestSigninFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	p := newProvider(t, store, fakeClient{err: &gisapi.APIError{Status: 401, Message: "Invalid Password!"}})

	res := p.Signin(ctx, gisapi.SigninRequest{Username: "admin", Password: "bad"})
	assert.Equal(t, authservice.Result{Success: false, Error: "Invalid Password!"}, res)
	assert.False(t, p.Authenticated())

	_, err := store.Get(ctx, "profile-1", sessionstore.TokenKey)
	require.ErrorIs(t, err, sessionstore.ErrNotFound)
}

func TestSigninFailureDefaultsMessage(t *testing.T) {
	p := newProvider(t, memory.New(), fakeClient{err: errors.New("connection refused")})

	res := p.Signin(context.Background(), gisapi.SigninRequest{})
	assert.Equal(t, "Login failed", res.Error)
}

func TestLoadNeedsBothEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "profile-1", sessionstore.UserKey, `{"id":1,"username":"x"}`))

	p := newProvider(t, store, nil)
	assert.False(t, p.Authenticated())
	assert.Nil(t, p.User())
}

func TestSignoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "profile-1", sessionstore.TokenKey, "tok"))
	require.NoError(t, store.Set(ctx, "profile-1", sessionstore.UserKey, `{"id":1,"permissions":["delete"]}`))

	p := newProvider(t, store, nil)
	require.True(t, p.HasPermission("delete"))

	p.Signout(ctx)

	assert.False(t, p.Authenticated())
	assert.False(t, p.HasPermission("delete"))

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		snapshot string
		want     bool
	}{
		{"listed", `{"id":1,"permissions":["create","delete"]}`, true},
		{"not listed", `{"id":1,"permissions":["create"]}`, false},
		{"no list", `{"id":1}`, false},
		{"case sensitive", `{"id":1,"permissions":["Delete"]}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New()
			require.NoError(t, store.Set(ctx, "profile-1", sessionstore.TokenKey, "tok"))
			require.NoError(t, store.Set(ctx, "profile-1", sessionstore.UserKey, tc.snapshot))

			p := newProvider(t, store, nil)
			assert.Equal(t, tc.want, p.HasPermission("delete"))
		})
	}

	anonymous := newProvider(t, memory.New(), nil)
	assert.False(t, anonymous.HasPermission("delete"))
}
