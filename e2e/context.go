package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state between the steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	status int
	body   map[string]interface{}
	raw    []byte
	vars   map[string]string
}

// NewTestContext targets the server at baseURL.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		vars:    map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.status = 0
	tc.body = nil
	tc.raw = nil
	tc.vars = map[string]string{}
}

func (tc *TestContext) POST(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	return tc.do(http.MethodPost, path, reader)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.body = nil
	if len(tc.raw) > 0 {
		var parsed map[string]interface{}
		if json.Unmarshal(tc.raw, &parsed) == nil {
			tc.body = parsed
		}
	}
	return nil
}

func (tc *TestContext) LastStatus() int {
	return tc.status
}

func (tc *TestContext) RawBody() string {
	return string(tc.raw)
}

// GetResponseField resolves a dotted path such as "identity.fullName"
// against the last JSON response.
func (tc *TestContext) GetResponseField(path string) (interface{}, error) {
	var cur interface{} = tc.body
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", path, tc.raw)
		}
		cur, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", path, tc.raw)
		}
	}
	return cur, nil
}

func (tc *TestContext) ResponseContains(path string) bool {
	_, err := tc.GetResponseField(path)
	return err == nil
}

func (tc *TestContext) Set(key, value string) {
	tc.vars[key] = value
}

func (tc *TestContext) Get(key string) string {
	return tc.vars[key]
}
