package client

import (
	"strings"
	"time"

	"github.com/creativehub/nexus/pkg/config"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// UserAgent identifies the client to the backend
const UserAgent = "Nexus-CLI/0.1.0"

// APIKeyHeader carries the publishable key on every request
const APIKeyHeader = "apikey"

var httpClient *resty.Client
var authToken string

// Init builds the HTTP client from the current configuration
func Init() {
	httpClient = resty.New()

	baseURL := strings.TrimRight(config.GetString(config.KeyBackendURL), "/")
	timeout := time.Duration(config.GetInt(config.KeyTimeout)) * time.Second

	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", UserAgent)
	httpClient.SetHeader(APIKeyHeader, config.GetString(config.KeyPublishableKey))
	if authToken != "" {
		httpClient.SetAuthToken(authToken)
	}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// Ready returns the client when a backend is configured. While the client is
// disconnected it fails fast without touching the network.
func Ready() (*resty.Client, error) {
	status := config.CheckStatus()
	if !status.Connected {
		return nil, clierrors.DisconnectedError(status.Reason)
	}
	return GetClient(), nil
}

// SetAuthToken sets the bearer token for subsequent requests
func SetAuthToken(token string) {
	authToken = token
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the bearer token
func ClearAuthToken() {
	authToken = ""
	Init()
}

// AuthToken returns the current bearer token
func AuthToken() string {
	return authToken
}

// HasAuthToken reports whether requests are authenticated
func HasAuthToken() bool {
	return authToken != ""
}

// Reset discards the client so the next call rebuilds it from config
func Reset() {
	httpClient = nil
	authToken = ""
}
