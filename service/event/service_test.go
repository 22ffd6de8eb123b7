package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/service/messaging"
)

type subJobNotice struct {
	TargetID string
}

func TestService_TypedListener(t *testing.T) {
	srv, err := New(messaging.Memory)
	require.NoError(t, err)
	defer srv.Close()

	received := make(chan *Event[subJobNotice], 2)
	untyped := make(chan *Event[any], 2)
	srv.SetListener(func(e *Event[any]) { untyped <- e })
	require.NoError(t, SetListenerOf[subJobNotice](srv, func(e *Event[subJobNotice]) { received <- e }))

	publisher, err := PublisherOf[subJobNotice](srv)
	require.NoError(t, err)
	same, err := PublisherOf[subJobNotice](srv)
	require.NoError(t, err)
	assert.Same(t, publisher, same)

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{JobID: "j1", EventType: TypeFailed}, subJobNotice{TargetID: "2"})))

	select {
	case e := <-received:
		assert.Equal(t, TypeFailed, e.Type())
		assert.Equal(t, "2", e.Data.TargetID)
	case <-time.After(time.Second):
		t.Fatal("typed event not delivered")
	}
	select {
	case e := <-untyped:
		assert.Equal(t, "j1", e.Context.JobID)
	case <-time.After(time.Second):
		t.Fatal("untyped event not delivered")
	}
}

func TestNew_UnsupportedVendor(t *testing.T) {
	_, err := New("kafka")
	assert.Error(t, err)
}
