package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan int) []int {
	var ret []int
	for v := range ch {
		ret = append(ret, v)
	}
	return ret
}

func TestBroadcastToAllListeners(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", src, WithSendTimeout[int](time.Second))
	l1 := b.Subscribe()
	l2 := b.Subscribe()

	res1 := make(chan []int, 1)
	res2 := make(chan []int, 1)
	go func() { res1 <- collect(l1) }()
	go func() { res2 <- collect(l2) }()

	for i := 1; i <= 3; i++ {
		src <- i
	}
	close(src)

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after source was closed")
	}
	assert.Equal(t, []int{1, 2, 3}, <-res1)
	assert.Equal(t, []int{1, 2, 3}, <-res2)
}

func TestCancelSubscription(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", src, WithListenerBuffer[int](5))
	l := b.Subscribe()
	src <- 1
	b.CancelSubscription(l)
	assert.Equal(t, []int{1}, collect(l))
	b.Close()
	<-b.Done()
}

func TestSubscribeAfterClose(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", src)
	b.Close()
	<-b.Done()
	_, ok := <-b.Subscribe()
	require.False(t, ok)
}
