package coordinator_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqut/arqut-registry/internal/coordinator"
	"github.com/arqut/arqut-registry/internal/pkg/apierr"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

func TestEndpointCoordinatorLoadAndFilter(t *testing.T) {
	m := fastMirror()
	c := coordinator.NewEndpointCoordinator(m, nil)
	ctx := context.Background()

	user := mirrorServiceByName(t, m, "user-service")
	require.NoError(t, c.LoadEndpoints(ctx, user.ServiceID))
	require.Len(t, c.Endpoints(), 3)

	get := models.EndpointMethodGet
	got := c.FilteredEndpoints("", &get)
	assert.Len(t, got, 2)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Path, got[i].Path)
	}

	got = c.FilteredEndpoints("register", nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.EndpointMethodPost, got[0].Method)

	assert.Empty(t, c.FilteredEndpoints("nothing-here", nil))

	counts := c.MethodCounts()
	assert.Equal(t, 2, counts[models.EndpointMethodGet])
	assert.Equal(t, 1, counts[models.EndpointMethodPost])
}

func TestEndpointCoordinatorSelection(t *testing.T) {
	m := fastMirror()
	c := coordinator.NewEndpointCoordinator(m, nil)
	ctx := context.Background()

	user := mirrorServiceByName(t, m, "user-service")
	require.NoError(t, c.LoadEndpoints(ctx, user.ServiceID))

	target := c.Endpoints()[0]
	require.NoError(t, c.LoadEndpoint(ctx, user.ServiceID, target.EndpointID))
	selected := c.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, target.EndpointID, selected.EndpointID)

	err := c.LoadEndpoint(ctx, user.ServiceID, uuid.New())
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
	assert.NotEmpty(t, c.LastError())

	// The failed fetch keeps the previous selection.
	require.NotNil(t, c.Selected())
	assert.Equal(t, target.EndpointID, c.Selected().EndpointID)

	// Loading a different service drops the selection.
	auth := mirrorServiceByName(t, m, "auth-service")
	require.NoError(t, c.LoadEndpoints(ctx, auth.ServiceID))
	assert.Nil(t, c.Selected())
	assert.Empty(t, c.Endpoints())
}
