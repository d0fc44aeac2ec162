package mealpy

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	jar        http.CookieJar
	headers    map[string]string
	timeout    time.Duration
}

func defaultOptions() options {
	return options{
		baseURL: DefaultBaseURL,
		timeout: 30 * time.Second,
		headers: map[string]string{},
	}
}

// WithBaseURL overrides the service base URL. Used by tests and by anyone
// pointing the client at a stand-in backend.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client. The client's cookie jar, if
// any, carries the session.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithCookieJar attaches a cookie jar to the constructed HTTP client.
// Ignored when WithHTTPClient is also given.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithHeader adds a static request header.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTimeout customizes the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}
