package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Profile selects the request header set.
type Profile string

const (
	// BrowserProfile sends browser-like headers for sites that answer
	// unknown user agents with 406 responses.
	BrowserProfile Profile = "browser"

	// CurlProfile sends minimal curl-style headers. Cloudflare-fronted
	// sites often allow these while blocking full browser header sets.
	CurlProfile Profile = "curl"
)

// Client wraps an http.Client with a header profile and request timeout.
type Client struct {
	client  *http.Client
	profile Profile
}

// New creates a client with the given profile. The timeout bounds each
// request end to end, including redirects.
func New(profile Profile, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		profile: profile,
	}
}

// Get issues a GET request with the profile's headers applied.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	return c.client.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	switch c.profile {
	case BrowserProfile:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	case CurlProfile:
		req.Header.Set("User-Agent", "curl/8.7.1")
	}
}
