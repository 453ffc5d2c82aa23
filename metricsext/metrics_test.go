package metricsext

import (
	"context"
	"testing"
	"time"

	"github.com/asynkron/actorcore/actor"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionRegistersAndTracksMailboxDepth(t *testing.T) {
	provider := sdkmetric.NewMeterProvider()
	meter := provider.Meter("actorcore-test")

	ext, err := New(context.Background(), meter)
	require.NoError(t, err)
	defer ext.Close()

	sys, err := actor.NewSystem(
		actor.WithSystemName("metrics-test"),
		actor.WithExtensions(Installer(ext)),
	)
	require.NoError(t, err)

	got, ok := sys.Extension(extensionID)
	require.True(t, ok)
	assert.Same(t, ext, got)

	sys.EventStream().Publish(actor.MailboxEvent{Who: sys.Root(), UserLen: 3})
	sys.EventStream().Publish(actor.MailboxEvent{Who: sys.Root(), UserLen: 5})

	require.Eventually(t, func() bool {
		for _, row := range ext.TrackedActors() {
			if row.Depth == 5 {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
}
