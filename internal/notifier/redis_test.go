package notifier

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeFansOutAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb1 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rdb2 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb1.Close()
	defer rdb2.Close()

	hub1, hub2 := NewHub(), NewHub()
	bridge1 := NewBridge(hub1, rdb1)
	bridge2 := NewBridge(hub2, rdb2)
	defer bridge1.Close()
	defer bridge2.Close()

	local := hub1.Subscribe()
	remote := hub2.Subscribe()
	defer hub1.Unsubscribe(local)
	defer hub2.Unsubscribe(remote)

	// give both relays a moment to attach
	time.Sleep(50 * time.Millisecond)

	bridge1.Publish(Event{Channel: "contract_updated", Entity: "contract", Op: "updated", ID: 3})

	assert.Equal(t, int64(3), receive(t, local).ID, "local delivery")

	ev := receive(t, remote)
	assert.Equal(t, "contract_updated", ev.Channel)
	assert.Equal(t, int64(3), ev.ID)

	// the originating instance must not see its own event twice
	assertNoEvent(t, local)
}

func TestPublishDoesNotBlockOnUnresponsiveRedis(t *testing.T) {
	// a server that accepts connections and reads but never replies, so any
	// synchronous Redis call would sit out the full read timeout
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go io.Copy(io.Discard, conn)
		}
	}()

	rdb := redis.NewClient(&redis.Options{
		Addr:        ln.Addr().String(),
		DialTimeout: 500 * time.Millisecond,
		ReadTimeout: 500 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	hub := NewHub()
	bridge := NewBridge(hub, rdb)
	defer bridge.Close()

	local := hub.Subscribe()
	defer hub.Unsubscribe(local)

	start := time.Now()
	bridge.Publish(Event{Channel: "farmer_created", Entity: "farmer", Op: "created", ID: 1})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 100*time.Millisecond, "mutation path must not wait on broadcast I/O")
	assert.Equal(t, int64(1), receive(t, local).ID, "local delivery still happens")
}
