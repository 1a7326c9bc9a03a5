// Package apiclient is a small typed client for the clipstream HTTP API,
// used by the upload workflow and by integration tests.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"clipstream/pkg/models"
	"clipstream/pkg/upauth"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// SetToken attaches a session token to subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return err
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", in, nil)
}

// Login authenticates and keeps the returned session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// Videos lists the feed newest-first. The server flavours an empty feed as a
// 404 with an empty list; the client folds that back into an empty slice.
func (c *Client) Videos(ctx context.Context) ([]models.Video, error) {
	var out []models.Video
	err := c.do(ctx, http.MethodGet, "/videos", nil, &out)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok && apiErr.Status == http.StatusNotFound {
			return []models.Video{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVideo(ctx context.Context, v *models.Video) (*models.Video, error) {
	var out struct {
		Video models.Video `json:"video"`
	}
	if err := c.do(ctx, http.MethodPost, "/videos", v, &out); err != nil {
		return nil, err
	}
	return &out.Video, nil
}

type uploadAuthResponse struct {
	upauth.Credentials
	PublicKey string `json:"publicKey"`
}

// UploadAuth fetches fresh signed upload credentials.
func (c *Client) UploadAuth(ctx context.Context) (upauth.Credentials, string, error) {
	var out uploadAuthResponse
	if err := c.do(ctx, http.MethodGet, "/upload-auth", nil, &out); err != nil {
		return upauth.Credentials{}, "", err
	}
	return out.Credentials, out.PublicKey, nil
}

// Issue satisfies the uploader's credential source.
func (c *Client) Issue(ctx context.Context) (upauth.Credentials, error) {
	creds, _, err := c.UploadAuth(ctx)
	return creds, err
}
