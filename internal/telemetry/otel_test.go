package telemetry

import (
	"context"
	"testing"

	"github.com/jason-s-yu/holdem/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupIsNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTel{Enabled: true})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupIsNoopWhenDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTel{Enabled: false, Endpoint: "http://collector:4318"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
