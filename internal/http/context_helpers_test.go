package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clustermaster/clustermaster-ui/internal/gate"
)

func TestPrincipalFromContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := gate.Principal{SubjectID: "u1", Email: "a@x.com"}
	got, ok := PrincipalFromContext(SetPrincipalInContext(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
