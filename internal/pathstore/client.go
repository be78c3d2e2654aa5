// Package pathstore persists highlight tokens in a pathstore key-value service.
package pathstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client communicates with the pathstore HTTP API. Every call is idempotent, so
// transient failures are retried with backoff.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: Backoff,
	}
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value      any    `json:"value"`
	MemoryType string `json:"memory_type,omitempty"`
	Source     string `json:"source,omitempty"`
}

// NodeResponse is the response from GET /kv/{key}.
type NodeResponse struct {
	Key        string          `json:"key_path"`
	Value      json.RawMessage `json:"value"`
	MemoryType string          `json:"memory_type,omitempty"`
}

// HighlightsKey is where the tokens of a document are stored.
func HighlightsKey(docID string) string {
	return "jerry/documents/" + url.PathEscape(docID) + "/highlights"
}

// send issues one request, retrying transient failures. The caller closes the body
// of the returned response.
func (c *Client) send(ctx context.Context, method, key string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/kv/"+key, rd)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = &RetryableError{Message: err.Error()}
			continue
		}
		if retryableStatus(resp.StatusCode) {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			lastErr = &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%s %s: giving up after %d attempts: %w", method, key, MaxRetries+1, lastErr)
}

// PutNode stores or updates a node at the given path.
func (c *Client) PutNode(ctx context.Context, key string, req NodeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPut, key, body)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// GetNode retrieves a node by key. A missing node is (nil, nil).
func (c *Client) GetNode(ctx context.Context, key string) (*NodeResponse, error) {
	resp, err := c.send(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}

	var node NodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}

// DeleteNode deletes a node. Deleting a missing node is not an error.
func (c *Client) DeleteNode(ctx context.Context, key string) error {
	resp, err := c.send(ctx, http.MethodDelete, key, nil)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("delete node %s: status %d: %s", key, resp.StatusCode, string(respBody))
}

// PutHighlights stores the token list of a document.
func (c *Client) PutHighlights(ctx context.Context, docID string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	return c.PutNode(ctx, HighlightsKey(docID), NodeRequest{
		Value:      tokens,
		MemoryType: "highlights",
		Source:     "jerry",
	})
}

// GetHighlights loads the token list of a document. ok is false when none is stored.
func (c *Client) GetHighlights(ctx context.Context, docID string) (tokens []string, ok bool, err error) {
	node, err := c.GetNode(ctx, HighlightsKey(docID))
	if err != nil || node == nil {
		return nil, false, err
	}
	if err := json.Unmarshal(node.Value, &tokens); err != nil {
		return nil, false, fmt.Errorf("decode highlights of %s: %w", docID, err)
	}
	return tokens, true, nil
}

// DeleteHighlights removes the stored token list of a document.
func (c *Client) DeleteHighlights(ctx context.Context, docID string) error {
	return c.DeleteNode(ctx, HighlightsKey(docID))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
