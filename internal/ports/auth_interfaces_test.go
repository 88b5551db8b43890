package ports_test

import (
	"testing"

	"github.com/clustermaster/clustermaster-ui/internal/adapters/backend"
	"github.com/clustermaster/clustermaster-ui/internal/mocks"
	mockauth "github.com/clustermaster/clustermaster-ui/internal/mocks/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// This test only verifies that our mocks and adapters conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mockauth.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)
	var _ ports.BackendAPI = (*backend.Client)(nil)
	var _ ports.ClusterAPI = (*mocks.MockClusterAPI)(nil)
	var _ ports.ActivityAPI = (*mocks.MockActivityAPI)(nil)
	var _ ports.NotificationAPI = (*mocks.MockNotificationAPI)(nil)
}
