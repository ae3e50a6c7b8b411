package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowlifecycle "github.com/aretw0/flow/pkg/adapters/lifecycle"
	"github.com/aretw0/flow/pkg/core"
)

func TestSourceBridgesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan core.Event, 2)
	events <- core.Event{Type: core.EventModify, ID: "journal/2024-01-01.md"}
	events <- core.Event{Type: core.EventCreate, ID: "journal/2024-01-02.md"}
	close(events)

	src := flowlifecycle.NewSource(events)
	require.NoError(t, src.Start(ctx))

	var got []string
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case e, ok := <-src.Events():
			if !ok {
				done = true
				continue
			}
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("timeout waiting for source to close")
		}
	}

	assert.Equal(t, []string{
		"MODIFY journal/2024-01-01.md",
		"CREATE journal/2024-01-02.md",
	}, got)
}
