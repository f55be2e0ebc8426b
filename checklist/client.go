package checklist

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"listscribe"
)

// ResponseError is a non-2xx answer from the server.
type ResponseError struct {
	Code int
	Body string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// APIClient talks to a listscribe server.
type APIClient struct {
	baseURL    string
	token      string
	httpClient listscribe.HTTPClient
}

func NewAPIClient(baseURL, token string, httpClient listscribe.HTTPClient) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

// Authenticate trades Basic credentials for a token.
func (c *APIClient) Authenticate(ctx context.Context, username, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authenticate", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(username, password)

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("server returned no token")
	}
	return out.Token, nil
}

// Transcribe posts raw image bytes as base64. One image uses imagePath,
// several use imagePaths.
func (c *APIClient) Transcribe(ctx context.Context, images ...[]byte) (listscribe.TranscriptionResult, error) {
	if len(images) == 0 {
		return listscribe.TranscriptionResult{}, errors.New("no images")
	}

	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}
	body := map[string]any{"imagePath": encoded[0]}
	if len(encoded) > 1 {
		body = map[string]any{"imagePaths": encoded}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return listscribe.TranscriptionResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", bytes.NewReader(payload))
	if err != nil {
		return listscribe.TranscriptionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var res listscribe.TranscriptionResult
	if err := c.do(req, &res); err != nil {
		return listscribe.TranscriptionResult{}, err
	}
	if res.Text == nil && res.Error == "" {
		return listscribe.TranscriptionResult{}, errors.New("response has neither text nor error")
	}
	return res, nil
}

func (c *APIClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ResponseError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
