package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrBadCredentials = errors.New("wrong email or password")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
)

type LoginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contrasenia"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	FullName  string `json:"nombreCompleto"`
	Email     string `json:"correo"`
	Phone     string `json:"telefono"`
	BirthDate string `json:"fechaNacimiento"`
	Password  string `json:"contrasenia"`
}

// LoginClient talks to the backend auth endpoints.
type LoginClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLoginClient(baseURL string) *LoginClient {
	return &LoginClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Login exchanges credentials for a bearer token.
func (c *LoginClient) Login(ctx context.Context, req LoginRequest) (string, error) {
	resp, err := c.post(ctx, "/api/auth/login", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrBadCredentials
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrUserNotFound
	case resp.StatusCode >= 300:
		return "", fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var body loginResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&body); errDecode != nil {
		return "", fmt.Errorf("malformed login response: %w", errDecode)
	}
	return body.Token, nil
}

// Register creates an account. The backend may or may not return a token.
func (c *LoginClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := c.post(ctx, "/api/auth/register", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", ErrEmailTaken
	case resp.StatusCode >= 300:
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("register failed: status %d: %s", resp.StatusCode, raw)
	}

	var body loginResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&body); errDecode != nil {
		return "", fmt.Errorf("malformed register response: %w", errDecode)
	}
	return body.Token, nil
}

func (c *LoginClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	return resp, nil
}
