package server

import (
	"testing"
	"time"

	"lizard-state/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward_RelaysUntilUpdatesClosed(t *testing.T) {
	updates := make(chan api.ServerResponse, 2)
	send := make(chan api.ServerResponse, 2)
	done := make(chan struct{})

	updates <- api.ServerResponse{Round: 1}
	updates <- api.ServerResponse{Round: 2}
	close(updates)
	forward(updates, send, done)

	require.Len(t, send, 2)
	assert.Equal(t, uint32(1), (<-send).Round)
	assert.Equal(t, uint32(2), (<-send).Round)
	_, open := <-send
	assert.False(t, open)
}

func TestForward_StopsWhenWriterGone(t *testing.T) {
	updates := make(chan api.ServerResponse, 4)
	send := make(chan api.ServerResponse) // писателя нет, отправка блокируется
	done := make(chan struct{})

	finished := make(chan struct{})
	go func() {
		forward(updates, send, done)
		close(finished)
	}()

	updates <- api.ServerResponse{Round: 1}
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forward blocked after the writer exited")
	}
	_, open := <-send
	assert.False(t, open)
}
