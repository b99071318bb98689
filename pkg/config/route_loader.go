package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/faque/pkg/route"
)

// routeSeed is one route as written in a route file.
type routeSeed struct {
	Method      string         `yaml:"method"`
	PathPattern string         `yaml:"pathPattern"`
	Response    route.Response `yaml:"response"`
	Enabled     *bool          `yaml:"enabled,omitempty"`
}

func (s routeSeed) toRoute() route.Route {
	enabled := true
	if s.Enabled != nil {
		enabled = *s.Enabled
	}
	return route.Route{
		Method:      s.Method,
		PathPattern: s.PathPattern,
		Response:    s.Response,
		Enabled:     enabled,
	}
}

// routeFileContent holds either a single route or a list of routes.
type routeFileContent struct {
	routes []routeSeed
}

// UnmarshalYAML implements custom YAML unmarshaling to handle both a single
// route and a list of routes.
func (c *routeFileContent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&c.routes)
	}
	var one routeSeed
	if err := node.Decode(&one); err != nil {
		return err
	}
	c.routes = []routeSeed{one}
	return nil
}

// LoadRouteFiles expands patterns (with ** support) relative to baseDir and
// loads every matched file, in sorted path order per pattern. Each route is
// validated; the first invalid one fails the load.
func LoadRouteFiles(patterns []string, baseDir string) ([]route.Route, error) {
	var result []route.Route
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(ResolvePath(baseDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("expanding route file pattern %q: %w", pattern, err)
		}
		slices.Sort(matches)

		for _, match := range matches {
			routes, err := loadRouteFile(match)
			if err != nil {
				return nil, err
			}
			result = append(result, routes...)
		}
	}
	return result, nil
}

func loadRouteFile(path string) ([]route.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("route file is empty: %s", path)
	}

	var content routeFileContent
	if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), &content); err != nil {
		return nil, fmt.Errorf("parsing route file %s: %w", path, err)
	}

	routes := make([]route.Route, 0, len(content.routes))
	for i, seed := range content.routes {
		r := seed.toRoute()
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: route %d (%s %s): %w", filepath.Base(path), i, r.Method, r.PathPattern, err)
		}
		routes = append(routes, r)
	}
	return routes, nil
}
