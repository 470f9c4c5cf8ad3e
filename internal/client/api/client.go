// Package api is a typed client for the B-Pay HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bpay/bpay/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")

	// ErrAlreadyRegistered is returned by Register when the email is taken.
	ErrAlreadyRegistered = errors.New("user already exists")
)

// Error is a non-2xx answer carrying the server's message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known answers onto the shared sentinels.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case e.Status == http.StatusForbidden:
		return common.ErrorForbidden
	case e.Status == http.StatusBadRequest && e.Message == "User not found":
		return common.ErrorUserNotFound
	case e.Status == http.StatusBadRequest && e.Message == "Invalid credentials":
		return common.ErrorInvalidCredentials
	case e.Status == http.StatusBadRequest:
		return common.ErrorValidation
	case e.Status >= http.StatusInternalServerError:
		return common.ErrorInternal
	}
	return nil
}

// User is one entry of the admin listing.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ping checks that the service answers its health route.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, name, email, pin, role string) (string, error) {
	in := map[string]string{"name": name, "email": email, "pin": pin}
	if role != "" {
		in["role"] = role
	}

	var out struct {
		Acknowledged bool    `json:"acknowledged"`
		InsertedID   *string `json:"insertedId"`
		Message      string  `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", "", in, &out); err != nil {
		return "", err
	}
	if out.InsertedID == nil {
		return "", ErrAlreadyRegistered
	}
	return *out.InsertedID, nil
}

func (c *Client) Login(ctx context.Context, email, pin string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", map[string]string{"email": email, "pin": pin}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// IssueToken calls the direct issuance route with an arbitrary payload.
func (c *Client) IssueToken(ctx context.Context, payload map[string]any) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/jwt", "", payload, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListUsers requires a token carrying the admin role.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
