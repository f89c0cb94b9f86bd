package commands

import (
	"bytes"
	"net"
	"testing"
	"time"

	"chesstwist/internal/client/api"
	chesshttp "chesstwist/internal/http"
	"chesstwist/internal/processor"
	"chesstwist/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()
	svc := service.New(nil, []byte("client-test-secret-0123456789abcd"), time.Hour)
	app := chesshttp.NewFiberApp(processor.New(svc), svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)

	t.Cleanup(func() {
		svc.Shutdown(time.Second)
		app.Shutdown()
	})
	return "http://" + ln.Addr().String()
}

func newRegistry(t *testing.T) (*Registry, *Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(api.New(startServer(t)), &out)
	return NewRegistry(s), s, &out
}

func TestHotseatGame(t *testing.T) {
	r, s, out := newRegistry(t)

	assert.True(t, r.Execute("new"))
	require.NotEmpty(t, s.GameID)
	assert.Len(t, s.Tokens, 2)
	assert.Equal(t, "w", s.Seat)

	assert.True(t, r.Execute("e2e4"))
	assert.Equal(t, "b", s.Seat)
	assert.Equal(t, "b", s.Turn)
	assert.Equal(t, 1, s.MoveCount)

	assert.True(t, r.Execute("move e7e5"))
	assert.Equal(t, 2, s.MoveCount)

	out.Reset()
	r.Execute("legal g1")
	assert.Contains(t, out.String(), "g1 → ")
	assert.Contains(t, out.String(), "f3")

	r.Execute("undo 2")
	assert.Equal(t, 0, s.MoveCount)
	assert.Equal(t, "w", s.Seat)

	out.Reset()
	r.Execute("e2e5")
	assert.Contains(t, out.String(), "INVALID_MOVE")

	r.Execute("delete")
	assert.Empty(t, s.GameID)
}

func TestPromotionAndSeats(t *testing.T) {
	r, s, out := newRegistry(t)

	r.Execute("new 4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	require.NotEmpty(t, s.GameID)

	r.Execute("a7a8")
	assert.Equal(t, "w", s.Seat, "promoting side keeps the seat")

	out.Reset()
	r.Execute("promote q")
	assert.Contains(t, out.String(), "Check from a8")
	assert.Equal(t, "b", s.Seat)

	// Playing black's move with white's token is refused
	r.Execute("seat w")
	out.Reset()
	r.Execute("e8d7")
	assert.Contains(t, out.String(), "NOT_YOUR_TURN")
}

func TestJoinAndWait(t *testing.T) {
	r, s, _ := newRegistry(t)
	r.Execute("new")
	gameID, blackToken := s.GameID, s.Tokens["b"]

	var out2 bytes.Buffer
	joiner := NewSession(api.New(s.Client.BaseURL), &out2)
	r2 := NewRegistry(joiner)
	r2.Execute("join " + gameID + " b " + blackToken)
	assert.Equal(t, "b", joiner.Seat)
	assert.Equal(t, 0, joiner.MoveCount)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r2.Execute("wait")
	}()

	time.Sleep(100 * time.Millisecond)
	r.Execute("d2d4")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return after move")
	}
	assert.Equal(t, 1, joiner.MoveCount)
	assert.Equal(t, "b", joiner.Turn)

	r2.Execute("d7d5")
	assert.Equal(t, 2, joiner.MoveCount)
}

func TestRegistryBasics(t *testing.T) {
	r, s, out := newRegistry(t)

	r.Execute("nonsense")
	assert.Contains(t, out.String(), "Unknown command")

	out.Reset()
	r.Execute("e2e4")
	assert.Contains(t, out.String(), "no game selected")

	out.Reset()
	r.Execute("health")
	assert.Contains(t, out.String(), "Storage: disabled")

	out.Reset()
	r.Execute("help")
	assert.Contains(t, out.String(), "promote")

	assert.False(t, r.Execute("exit"))
	assert.Empty(t, s.GameID)
}
