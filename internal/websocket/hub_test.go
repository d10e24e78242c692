package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/view"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	return startHubWith(t, nil)
}

func startHubWith(t *testing.T, rdb *redis.Client) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(rdb, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	stop := func() {
		cancel()
		<-done
	}
	t.Cleanup(stop)
	return h, stop
}

func attach(t *testing.T, h *Hub, id string) *Client {
	t.Helper()
	c := NewClient(h, nil, id)
	require.True(t, h.Register(c, nil))
	require.Eventually(t, func() bool { return h.Connected(id) > 0 }, time.Second, 5*time.Millisecond)
	return c
}

func TestViewMessage(t *testing.T) {
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ViewMessage(view.Dashboard), &msg))
	assert.Equal(t, "view", msg.Type)
	assert.Equal(t, "dashboard", msg.Data["view"])
}

func TestHub_PushViewReachesOnlyTargetSession(t *testing.T) {
	h, _ := startHub(t)
	a := attach(t, h, "a")
	b := attach(t, h, "b")

	h.PushView("a", view.ShopSettings)

	select {
	case got := <-a.Send:
		assert.JSONEq(t, string(ViewMessage(view.ShopSettings)), string(got))
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
	assert.Empty(t, b.Send)
}

func TestHub_MultipleSocketsPerSession(t *testing.T) {
	h, _ := startHub(t)
	first := attach(t, h, "a")
	second := NewClient(h, nil, "a")
	require.True(t, h.Register(second, nil))
	require.Eventually(t, func() bool { return h.Connected("a") == 2 }, time.Second, 5*time.Millisecond)

	h.PushView("a", view.Landing)
	assert.Len(t, first.Send, 1)
	assert.Len(t, second.Send, 1)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h, _ := startHub(t)
	c := attach(t, h, "a")

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.Connected("a") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)

	// a second unregister is harmless
	h.Unregister(c)
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	h, _ := startHub(t)
	c := NewClient(h, nil, "a")
	c.Send = make(chan []byte, 1)
	require.True(t, h.Register(c, nil))
	require.Eventually(t, func() bool { return h.Connected("a") == 1 }, time.Second, 5*time.Millisecond)

	h.PushView("a", view.Dashboard)
	h.PushView("a", view.Landing)

	assert.Eventually(t, func() bool { return h.Connected("a") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesRemainingClients(t *testing.T) {
	h, stop := startHub(t)
	c := attach(t, h, "a")

	stop()

	for range c.Send {
	}
	assert.False(t, h.Register(NewClient(h, nil, "b"), nil))
}

func nextFrame(t *testing.T, c *Client) view.View {
	t.Helper()
	select {
	case got, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(got, &msg))
		return view.View(msg.Data["view"])
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return ""
	}
}

func TestHub_HelloIsFirstFrame(t *testing.T) {
	h, _ := startHub(t)
	current := view.Support
	c := NewClient(h, nil, "a")
	require.True(t, h.Register(c, func() []byte { return ViewMessage(current) }))
	require.Eventually(t, func() bool { return h.Connected("a") == 1 }, time.Second, 5*time.Millisecond)

	h.PushView("a", view.Dashboard)

	assert.Equal(t, view.Support, nextFrame(t, c))
	assert.Equal(t, view.Dashboard, nextFrame(t, c))
}

func TestHub_NilHelloSendsNothing(t *testing.T) {
	h, _ := startHub(t)
	c := NewClient(h, nil, "a")
	require.True(t, h.Register(c, func() []byte { return nil }))
	require.Eventually(t, func() bool { return h.Connected("a") == 1 }, time.Second, 5*time.Millisecond)

	assert.Empty(t, c.Send)
}

func TestHub_ForgetClosesLocalSockets(t *testing.T) {
	h, _ := startHub(t)
	a := attach(t, h, "a")
	b := attach(t, h, "b")

	h.Forget("a")

	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, 0, h.Connected("a"))
	assert.Equal(t, 1, h.Connected("b"))

	// the socket's own unregister after Forget must not close twice
	h.Unregister(a)
	h.PushView("b", view.Landing)
	assert.Equal(t, view.Landing, nextFrame(t, b))
}

func newRedisPair(t *testing.T) (*miniredis.Miniredis, *Hub, *Hub) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}
	owner, _ := startHubWith(t, client())
	other, _ := startHubWith(t, client())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(ClusterChannel)[ClusterChannel] == 2
	}, 2*time.Second, 10*time.Millisecond)
	return mr, owner, other
}

func TestHub_RemoteSocketFollowsOwner(t *testing.T) {
	_, owner, other := newRedisPair(t)
	ctx := context.Background()

	owner.Track("s1", view.Dashboard)
	v, ok := other.RemoteView(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, view.Dashboard, v)

	remote := NewClient(other, nil, "s1")
	require.True(t, other.Register(remote, func() []byte {
		v, ok := other.RemoteView(context.Background(), "s1")
		if !ok {
			return nil
		}
		return ViewMessage(v)
	}))
	require.Eventually(t, func() bool { return other.Connected("s1") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, view.Dashboard, nextFrame(t, remote))

	owner.PushView("s1", view.ShopSettings)

	assert.Equal(t, view.ShopSettings, nextFrame(t, remote))
	v, ok = other.RemoteView(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, view.ShopSettings, v)
}

func TestHub_OwnerIgnoresItsOwnEcho(t *testing.T) {
	_, owner, _ := newRedisPair(t)
	local := attach(t, owner, "s1")

	owner.PushView("s1", view.Support)

	assert.Equal(t, view.Support, nextFrame(t, local))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, local.Send)
}

func TestHub_ForgetReachesRemoteSockets(t *testing.T) {
	mr, owner, other := newRedisPair(t)
	owner.Track("s1", view.Landing)
	remote := attach(t, other, "s1")

	owner.Forget("s1")

	require.Eventually(t, func() bool { return other.Connected("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
	_, open := <-remote.Send
	assert.False(t, open)
	assert.False(t, mr.Exists(viewKeyPrefix+"s1"))
	_, ok := other.RemoteView(context.Background(), "s1")
	assert.False(t, ok)
}

func TestHub_RemoteViewWithoutRedis(t *testing.T) {
	h, _ := startHub(t)
	h.Track("s1", view.Dashboard)

	_, ok := h.RemoteView(context.Background(), "s1")
	assert.False(t, ok)
}
