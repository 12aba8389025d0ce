package authservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
	"github.com/Leopold1975/gis_console/pkg/logger"
)

const loginFailed = "Login failed"

// Store persists per-profile key/value entries between page loads.
type Store interface {
	Get(ctx context.Context, profile, key string) (string, error)
	Set(ctx context.Context, profile, key, value string) error
	Delete(ctx context.Context, profile string, keys ...string) error
}

type Client interface {
	Signin(context.Context, gisapi.SigninRequest, ...gisapi.RequestEditorFn) (gisapi.SigninResponse, error)
}

// Result mirrors what the sign-in form needs to show.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Provider is the authentication state of one browser profile.
type Provider struct {
	store   Store
	client  Client
	profile string
	lg      logger.Logger

	mu   sync.RWMutex
	user *models.SessionUser
}

func New(store Store, profile string, lg logger.Logger) *Provider {
	return &Provider{ //nolint:exhaustruct
		store:   store,
		profile: profile,
		lg:      lg,
	}
}

// SetClient binds the API client. The client itself reads tokens from the provider,
// so it is wired after construction.
func (p *Provider) SetClient(c Client) {
	p.mu.Lock()
	p.client = c
	p.mu.Unlock()
}

// Load hydrates the in-memory user from the store. Both entries must exist,
// otherwise the profile starts anonymous. The cached token is not validated.
func (p *Provider) Load(ctx context.Context) error {
	token, err := p.get(ctx, sessionstore.TokenKey)
	if err != nil {
		return err
	}

	raw, err := p.get(ctx, sessionstore.UserKey)
	if err != nil {
		return err
	}

	if token == "" || raw == "" {
		p.setUser(nil)

		return nil
	}

	var u models.SessionUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		p.lg.Warnf("profile %s: discarding unreadable user snapshot: %s", p.profile, err.Error())
		p.setUser(nil)

		return nil
	}

	p.setUser(&u)

	return nil
}

func (p *Provider) Signin(ctx context.Context, creds gisapi.SigninRequest) Result {
	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()

	if c == nil {
		return Result{Success: false, Error: loginFailed}
	}

	resp, err := c.Signin(ctx, creds)
	if err != nil {
		p.lg.Infof("profile %s: signin rejected: %s", p.profile, err.Error())

		return Result{Success: false, Error: gisapi.MessageOf(err, loginFailed)}
	}

	snapshot, err := json.Marshal(resp.SessionUser)
	if err != nil {
		return Result{Success: false, Error: loginFailed}
	}

	if err := p.store.Set(ctx, p.profile, sessionstore.TokenKey, resp.AccessToken); err != nil {
		p.lg.Errorf("profile %s: persist token error: %s", p.profile, err.Error())

		return Result{Success: false, Error: loginFailed}
	}

	if err := p.store.Set(ctx, p.profile, sessionstore.UserKey, string(snapshot)); err != nil {
		p.lg.Errorf("profile %s: persist user error: %s", p.profile, err.Error())

		if errD := p.store.Delete(ctx, p.profile, sessionstore.TokenKey); errD != nil {
			p.lg.Errorf("profile %s: undo token error: %s", p.profile, errD.Error())
		}

		return Result{Success: false, Error: loginFailed}
	}

	u := resp.SessionUser
	p.setUser(&u)

	return Result{Success: true} //nolint:exhaustruct
}

// Signout clears the session whatever the store says.
func (p *Provider) Signout(ctx context.Context) {
	if err := p.store.Delete(ctx, p.profile, sessionstore.TokenKey, sessionstore.UserKey); err != nil {
		p.lg.Errorf("profile %s: clear session error: %s", p.profile, err.Error())
	}

	p.setUser(nil)
}

func (p *Provider) HasPermission(permission string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.user == nil || p.user.Permissions == nil {
		return false
	}

	return slices.Contains(p.user.Permissions, permission)
}

// User returns a copy of the current user, or nil when anonymous.
func (p *Provider) User() *models.SessionUser {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.user == nil {
		return nil
	}

	u := *p.user
	u.Permissions = slices.Clone(p.user.Permissions)

	return &u
}

func (p *Provider) Authenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.user != nil
}

// Token implements gisapi.TokenSource straight from the store.
func (p *Provider) Token(ctx context.Context) (string, error) {
	return p.get(ctx, sessionstore.TokenKey)
}

func (p *Provider) Profile() string {
	return p.profile
}

func (p *Provider) get(ctx context.Context, key string) (string, error) {
	v, err := p.store.Get(ctx, p.profile, key)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("get %s error: %w", key, err)
	}

	return v, nil
}

func (p *Provider) setUser(u *models.SessionUser) {
	p.mu.Lock()
	p.user = u
	p.mu.Unlock()
}
