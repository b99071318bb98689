// Package config provides configuration loading for faque.
//
// Configuration is resolved from four sources, highest precedence first:
//
//  1. Command-line flags (applied by the cli package)
//  2. FAQUE_* environment variables (ApplyEnv)
//  3. A YAML config file (LoadFile)
//  4. Built-in defaults (Default)
//
// Example config file:
//
//	listen: ":8080"
//	dataDir: ./data
//	maxRequestHistory: 1000
//	maxBodySize: 51200
//	maxRequestBodySize: 10485760
//	saveInterval: 2s
//	cleanupInterval: 60s
//	routeFiles:
//	  - routes/**/*.yaml
//	log:
//	  level: info
//	  format: text
//
// Config files and route files may reference environment variables as
// ${NAME} or ${NAME:-default}.
//
// # Route Files
//
// Route files seed the route table when no saved snapshot exists. A file holds
// either one route or a YAML list of routes:
//
//	method: GET
//	pathPattern: /api/users/*
//	response:
//	  statusCode: 200
//	  headers:
//	    Content-Type: application/json
//	  body: '{"id": 1}'
//
// Routes are enabled unless they set enabled: false.
package config
