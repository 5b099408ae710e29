//go:build functional

// Package functional runs the item service on real listeners and drives it over HTTP and WebSocket.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/listapp/internal/config"
	"github.com/vyrodovalexey/listapp/internal/model"
	"github.com/vyrodovalexey/listapp/internal/server"
	"github.com/vyrodovalexey/listapp/internal/store"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost    = "TEST_SERVER_HOST"
	EnvTestTimeout       = "TEST_TIMEOUT"
	EnvTestMetricsEnable = "TEST_METRICS_ENABLED"
)

// Default test configuration values.
const (
	DefaultTestHost         = "localhost"
	DefaultTestTimeout      = 30 * time.Second
	DefaultRequestTimeout   = 5 * time.Second
	DefaultWebSocketTimeout = 10 * time.Second
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultMetricsEnabled   = true
)

// TestConfig holds test configuration loaded from environment.
type TestConfig struct {
	Host           string
	Timeout        time.Duration
	MetricsEnabled bool
}

// LoadTestConfig loads test configuration from environment variables.
func LoadTestConfig() *TestConfig {
	cfg := &TestConfig{
		Host:           DefaultTestHost,
		Timeout:        DefaultTestTimeout,
		MetricsEnabled: DefaultMetricsEnabled,
	}

	if host := os.Getenv(EnvTestServerHost); host != "" {
		cfg.Host = host
	}

	if timeoutStr := os.Getenv(EnvTestTimeout); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Timeout = timeout
		}
	}

	if metricsStr := os.Getenv(EnvTestMetricsEnable); metricsStr != "" {
		if enabled, err := strconv.ParseBool(metricsStr); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}

	return cfg
}

// TestServer runs the item service on free local ports.
type TestServer struct {
	Server   *server.Server
	Store    *store.MemoryStore
	BaseURL  string
	ProbeURL string
	WSURL    string
	timeout  time.Duration
	t        *testing.T
}

// NewTestServer starts a server seeded with items and stops it when the test ends.
func NewTestServer(t *testing.T, seed ...model.Item) *TestServer {
	t.Helper()

	testCfg := LoadTestConfig()
	port := freePort(t, testCfg.Host)
	probePort := freePort(t, testCfg.Host)

	cfg := &config.Config{
		ServerPort:      port,
		ProbePort:       probePort,
		LogLevel:        "error",
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  testCfg.MetricsEnabled,
		Environment:     config.EnvironmentTest,
		EventsEnabled:   true,
		MaxBodyBytes:    config.DefaultMaxBodyBytes,
	}

	itemStore := store.NewMemoryStore(seed...)

	srv, err := server.New(cfg, zap.NewNop(), itemStore)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ts := &TestServer{
		Server:   srv,
		Store:    itemStore,
		BaseURL:  fmt.Sprintf("http://%s:%d", testCfg.Host, port),
		ProbeURL: fmt.Sprintf("http://%s:%d", testCfg.Host, probePort),
		WSURL:    fmt.Sprintf("ws://%s:%d/ws", testCfg.Host, port),
		timeout:  testCfg.Timeout,
		t:        t,
	}

	go func() {
		if err := srv.Start(); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	ts.waitForReady()
	t.Cleanup(ts.Stop)

	return ts
}

func freePort(t *testing.T, host string) int {
	t.Helper()

	listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// waitForReady polls the readiness probe and the API listener.
func (ts *TestServer) waitForReady() {
	ctx, cancel := context.WithTimeout(context.Background(), ts.timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			if ready(ts.ProbeURL+"/ready") && ready(ts.BaseURL+"/items") {
				return
			}
		}
	}
}

func ready(url string) bool {
	resp, err := http.Get(url) //nolint:gosec // test URL
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Stop shuts the server down.
func (ts *TestServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}
}

// HTTPClient provides a configured HTTP client for tests.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client for testing.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		baseURL: baseURL,
	}
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do sends method path with an optional raw body of the given content type.
func (c *HTTPClient) Do(ctx context.Context, method, path, body, contentType string) (*Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// MustDo is Do that fails the test on transport errors.
func (c *HTTPClient) MustDo(t *testing.T, method, path, body string) *Response {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	contentType := ""
	if body != "" {
		contentType = "application/json"
	}

	resp, err := c.Do(ctx, method, path, body, contentType)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// AssertStatusCode asserts that the response has the expected status code.
func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

// AssertBody asserts the response body, ignoring the trailing newline.
func AssertBody(t *testing.T, resp *Response, expected string) {
	t.Helper()
	if got := string(bytes.TrimSpace(resp.Body)); got != expected {
		t.Errorf("Expected body %s, got %s", expected, got)
	}
}

// AssertErrorEnvelope asserts an error response with the given status and message.
func AssertErrorEnvelope(t *testing.T, resp *Response, status int, message string) {
	t.Helper()

	AssertStatusCode(t, resp, status)

	var envelope model.ErrorEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		t.Fatalf("Failed to parse error envelope: %v", err)
	}
	if envelope.Error.Status != status || envelope.Error.Message != message {
		t.Errorf("Expected error {%q, %d}, got {%q, %d}",
			message, status, envelope.Error.Message, envelope.Error.Status)
	}
}

// LogTestStart logs the start of a test.
func LogTestStart(t *testing.T, testID, testName string) {
	t.Helper()
	t.Logf("Starting test %s: %s", testID, testName)
}

// LogTestEnd logs the end of a test.
func LogTestEnd(t *testing.T, testID string) {
	t.Helper()
	t.Logf("Completed test %s", testID)
}
