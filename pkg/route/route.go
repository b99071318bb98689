package route

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Methods lists the HTTP methods a route may be registered for.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Response is the canned response returned for a matching request.
type Response struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body" yaml:"body"`
}

// Route maps a method and path pattern to a response.
type Route struct {
	Method      string   `json:"method" yaml:"method"`
	PathPattern string   `json:"pathPattern" yaml:"pathPattern"`
	Response    Response `json:"response" yaml:"response"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`

	// Version is assigned by the Table. Values set by callers are ignored.
	Version int64 `json:"version" yaml:"-"`
}

// Key returns the identity of the route: upper-cased method and exact pattern.
func (r Route) Key() string {
	return MakeKey(r.Method, r.PathPattern)
}

// MakeKey builds a table key from a method and path pattern.
func MakeKey(method, pathPattern string) string {
	return strings.ToUpper(method) + " " + pathPattern
}

// Validate checks the route for a supported method, a status code in
// [100,599], a rooted path pattern, and well-formed response headers.
func (r Route) Validate() error {
	if !slices.Contains(Methods, strings.ToUpper(r.Method)) {
		return &ValidationError{Field: "method", Value: r.Method,
			Reason: "must be one of " + strings.Join(Methods, ", ")}
	}
	if r.PathPattern == "" || r.PathPattern[0] != '/' {
		return &ValidationError{Field: "pathPattern", Value: r.PathPattern, Reason: "must start with /"}
	}
	if r.Response.StatusCode < 100 || r.Response.StatusCode > 599 {
		return &ValidationError{Field: "statusCode", Value: r.Response.StatusCode,
			Reason: "must be between 100 and 599"}
	}
	for name, value := range r.Response.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return &ValidationError{Field: "header name", Value: name, Reason: "not a valid HTTP token"}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return &ValidationError{Field: "header value", Value: name, Reason: "contains invalid characters"}
		}
	}
	return nil
}

// normalize returns a copy with an upper-cased method and private header map.
func (r Route) normalize() Route {
	r.Method = strings.ToUpper(r.Method)
	r.Response.Headers = maps.Clone(r.Response.Headers)
	return r
}

// clone returns a copy safe to hand to callers.
func (r Route) clone() Route {
	r.Response.Headers = maps.Clone(r.Response.Headers)
	return r
}
