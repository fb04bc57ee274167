package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient rooted at baseURL. A positive timeout
// bounds every request made through the client.
//
//	client := utils.NewHTTPClient("http://localhost:8080", 10*time.Second)
//	resp, err := client.R().Get("/api/ping")
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPClient{Client: client}
}
