// Package e2e drives a running server over HTTP, the way a real client
// would: JWT-authenticated requests and JSON assertions.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds shared state across step definitions for one scenario.
type TestContext struct {
	BaseURL    string
	SigningKey string
	client     *http.Client

	lastStatus      int
	lastBody        map[string]any
	lastForestID    float64
	lastMilestoneID float64
}

func NewTestContext() *TestContext {
	base := os.Getenv("CANOPY_E2E_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		key = "dev-secret-key-change-in-production"
	}
	return &TestContext{
		BaseURL:    base,
		SigningKey: key,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Token mints an access token for the given principal, signed with the same
// key the server holds.
func (tc *TestContext) Token(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
		"iss":     "canopy",
		"aud":     "canopy-api",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.SigningKey))
}

// POST sends an authenticated JSON request and records the response.
func (tc *TestContext) POST(path, asUser string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	token, err := tc.Token(asUser)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return tc.do(req)
}

// GET sends an unauthenticated request and records the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	_ = json.NewDecoder(resp.Body).Decode(&tc.lastBody)

	if id, ok := tc.lastBody["id"].(float64); ok {
		switch {
		case req.URL.Path == "/forests":
			tc.lastForestID = id
		case req.URL.Path == "/milestones":
			tc.lastMilestoneID = id
		}
	}
	return nil
}

func (tc *TestContext) LastStatus() int          { return tc.lastStatus }
func (tc *TestContext) LastForestID() int        { return int(tc.lastForestID) }
func (tc *TestContext) LastMilestoneID() int     { return int(tc.lastMilestoneID) }
func (tc *TestContext) LastField(key string) any { return tc.lastBody[key] }

// RequireSuccess fails unless the last response was 2xx.
func (tc *TestContext) RequireSuccess() error {
	if tc.lastStatus < 200 || tc.lastStatus > 299 {
		return fmt.Errorf("expected success, got %d: %v", tc.lastStatus, tc.lastBody)
	}
	return nil
}

// RequireError fails unless the last response carried the given domain code.
func (tc *TestContext) RequireError(code string) error {
	if tc.lastStatus >= 200 && tc.lastStatus <= 299 {
		return fmt.Errorf("expected error %q, got success %d", code, tc.lastStatus)
	}
	got, _ := tc.lastBody["error"].(string)
	if got != code {
		return fmt.Errorf("expected error %q, got %q (status %d)", code, got, tc.lastStatus)
	}
	return nil
}
