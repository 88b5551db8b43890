//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run via `go run`/`go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// mockgen - regenerates the gomock doubles in internal/mocks
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0 (matches go.mod)
//
// Air - live reload for the dashboard gateway during local development
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run: air --build.cmd "go build -o ./tmp/clustermaster ./cmd/clustermaster" --build.bin ./tmp/clustermaster
