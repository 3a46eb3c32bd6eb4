package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
)

func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

// Signup returns nil without error when the server created the account but
// did not answer with an identity; the user then has to log in.
func (c *Client) Signup(ctx context.Context, s model.Signup) (*model.Session, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/auth/signup", nil, s)
	if err != nil {
		return nil, err
	}
	sess, err := decodeSession(resp)
	if err != nil {
		// Some servers answer with a bare message such as "User created successfully".
		c.log.Debug("signup answered without identity", zap.Error(err))
		return nil, nil
	}
	return sess, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

// Me asks the server who it thinks we are. An unauthenticated answer comes
// back as a *StatusError.
func (c *Client) Me(ctx context.Context) (*model.Session, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

func decodeSession(resp *Response) (*model.Session, error) {
	var s model.Session
	if err := resp.Decode(&s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, ErrNoIdentity
	}
	return &s, nil
}
