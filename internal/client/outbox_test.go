package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOutboxDrainBlocksUntilPush(t *testing.T) {
	ob := newOutbox()

	done := make(chan []interface{}, 1)
	go func() {
		frames, ok := ob.drain()
		require.True(t, ok)
		done <- frames
	}()

	time.Sleep(10 * time.Millisecond)
	ob.push("hello")

	select {
	case frames := <-done:
		require.Equal(t, []interface{}{"hello"}, frames)
	case <-time.After(time.Second):
		t.Fatal("drain did not wake up after push")
	}
}

func TestOutboxCloseUnblocksDrain(t *testing.T) {
	ob := newOutbox()

	done := make(chan bool, 1)
	go func() {
		_, ok := ob.drain()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	ob.close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("drain did not wake up after close")
	}
}
