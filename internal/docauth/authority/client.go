// Package authority calls the external government registry that adjudicates
// document authenticity.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusAuthenticated is the authority's designated "authenticated" status
// code, fixed by its contract.
const StatusAuthenticated = 200

// Response is the structured result of a completed authenticity check.
// A completed check that declines authentication is still a Response, not an
// error; errors are reserved for calls that could not complete.
type Response struct {
	Success    bool
	StatusCode int
	Message    string
	Data       json.RawMessage
}

// Authenticated reports whether the authority vouched for the document:
// the call must signal success and carry the designated OK code.
func (r *Response) Authenticated() bool {
	return r.Success && r.StatusCode == StatusAuthenticated
}

// Client performs the remote authenticity check.
type Client interface {
	Authenticate(ctx context.Context, idCitizen int64, urlDocument, documentTitle string) (*Response, error)
}

// HTTPClient implements Client against the registry's HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a new HTTP-based authority client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authenticateRequest is the request body for the authenticity check.
type authenticateRequest struct {
	IDCitizen     int64  `json:"idCitizen"`
	URLDocument   string `json:"urlDocument"`
	DocumentTitle string `json:"documentTitle"`
}

// errorResponse represents an error body from the registry.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Authenticate submits the document for an authenticity check.
//
// HTTP responses that represent a completed adjudication (OK or a business
// rejection such as 400/404/409) are returned as a Response. System faults
// (timeouts, outages, credentials, unparseable bodies) are returned as an
// *Error so the caller can tell "not authentic" from "could not run".
func (c *HTTPClient) Authenticate(ctx context.Context, idCitizen int64, urlDocument, documentTitle string) (*Response, error) {
	reqBody, err := json.Marshal(authenticateRequest{
		IDCitizen:     idCitizen,
		URLDocument:   urlDocument,
		DocumentTitle: documentTitle,
	})
	if err != nil {
		return nil, NewError(ErrorInternal, "failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/apis/authenticateDocument", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewError(ErrorInternal, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewError(ErrorTimeout, "request timeout", err)
		}
		return nil, NewError(ErrorOutage, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrorInternal, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &Response{
			Success:    true,
			StatusCode: resp.StatusCode,
			Data:       cloneBody(body),
		}, nil

	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		// Completed adjudication: the registry declined the document.
		return &Response{
			Success:    false,
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(body),
			Data:       cloneBody(body),
		}, nil

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, NewError(ErrorAuthentication, "authentication with registry failed", nil)

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(ErrorRateLimited, "rate limited", nil)

	case resp.StatusCode >= 500:
		return nil, NewError(ErrorOutage, fmt.Sprintf("registry unavailable: status %d", resp.StatusCode), nil)

	default:
		return nil, NewError(ErrorContractMismatch, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}
}

// rejectionMessage extracts the registry's human-readable message from a
// rejection body, falling back to the raw text when it is not JSON.
func rejectionMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain
	}
	return string(bytes.TrimSpace(body))
}

func cloneBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if !json.Valid(body) {
		return nil
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out
}
