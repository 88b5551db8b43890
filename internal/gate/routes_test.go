package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTable_Resolve(t *testing.T) {
	table := NewRouteTable(map[string]bool{
		"/":              true,
		"/register":      false,
		"/sign-in":       false,
		"/clusters/":     true,
		"/api/":          true,
		"/api/public/":   false,
		"/api/public/x/": true,
	})

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/register", false},
		{"/sign-in", false},
		{"/clusters/dev", true},
		{"/clusters/", true},
		{"/api/clusters", true},
		{"/api/public/version", false},
		{"/api/public/x/y", true},
		{"/unknown", false}, // "/" must not act as a catch-all
		{"/auth/login", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := table.Resolve(tt.path)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, tt.want, got.RequiresAuth)
		})
	}
}

func TestRouteTable_ZeroValueAllowsEverything(t *testing.T) {
	var table RouteTable
	assert.False(t, table.Resolve("/anything").RequiresAuth)
}
