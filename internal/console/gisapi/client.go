package gisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

const TokenHeader = "x-access-token"

// HttpRequestDoer performs HTTP requests.
type HttpRequestDoer interface { //nolint:revive,stylecheck
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn is the function signature for the RequestEditor callback function.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

type ClientOption func(*Client) error

// TokenSource yields the current session token, or "" when there is none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote GIS REST service. All paths are relative to Server.
type Client struct {
	Server         string
	Client         HttpRequestDoer
	RequestEditors []RequestEditorFn
}

func NewClient(server string, opts ...ClientOption) (*Client, error) {
	client := Client{ //nolint:exhaustruct
		Server: server,
	}

	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}

	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}

	if client.Client == nil {
		client.Client = &http.Client{} //nolint:exhaustruct
	}

	return &client, nil
}

func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer

		return nil
	}
}

func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)

		return nil
	}
}

// WithTokenSource attaches the session token to every outgoing request when
// the source has one.
func WithTokenSource(ts TokenSource) ClientOption {
	return WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
		token, err := ts.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token error: %w", err)
		}

		if token != "" {
			req.Header.Set(TokenHeader, token)
		}

		return nil
	})
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}

	for _, r := range additionalEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	serverURL, err := url.Parse(c.Server)
	if err != nil {
		return nil, fmt.Errorf("parse server url error: %w", err)
	}

	queryURL, err := serverURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse path error: %w", err)
	}

	var r io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body error: %w", err)
		}

		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, queryURL.String(), r)
	if err != nil {
		return nil, fmt.Errorf("new request error: %w", err)
	}

	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	return req, nil
}

// do sends the request and decodes a 2xx body into out when out is not nil.
// An empty success body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any, reqEditors ...RequestEditorFn) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s error: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response error: %w", method, path, err)
	}

	return nil
}

func idPath(resource string, id int64) (string, error) {
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("style id param error: %w", err)
	}

	return "/" + resource + "/" + pathParam, nil
}
