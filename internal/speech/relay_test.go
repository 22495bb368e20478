package speech_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voicecmd/internal/recognition"
	"github.com/roach88/voicecmd/internal/speech"
)

// relayPeer serves eng on a test server and returns the connected client side.
func relayPeer(t *testing.T, eng *speech.RelayEngine) (*websocket.Conn, <-chan error) {
	t.Helper()

	served := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			served <- err
			return
		}
		served <- eng.Serve(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, eng.Supported, 2*time.Second, 5*time.Millisecond)
	return client, served
}

func readFrame(t *testing.T, conn *websocket.Conn) speech.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f speech.Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func newRelay() *speech.RelayEngine {
	return speech.NewRelayEngine(speech.DefaultSettings(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRelayEngine_UnsupportedWithoutPeer(t *testing.T) {
	eng := newRelay()

	assert.False(t, eng.Supported())
	assert.ErrorIs(t, eng.Start(newCollectSink()), speech.ErrNoPeer)
	assert.ErrorIs(t, eng.Stop(), speech.ErrNoPeer)
	assert.ErrorIs(t, eng.Abort(), speech.ErrNoPeer)
}

func TestRelayEngine_StartSendsSettings(t *testing.T) {
	eng := newRelay()
	client, _ := relayPeer(t, eng)

	require.NoError(t, eng.Start(newCollectSink()))

	f := readFrame(t, client)
	assert.Equal(t, speech.FrameStart, f.Type)
	require.NotNil(t, f.Settings)
	assert.Equal(t, speech.DefaultSettings(), *f.Settings)
}

func TestRelayEngine_ForwardsPeerFrames(t *testing.T) {
	eng := newRelay()
	client, _ := relayPeer(t, eng)
	sink := newCollectSink()

	require.NoError(t, eng.Start(sink))
	readFrame(t, client)

	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameBegan}))
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameResult, Transcript: "go home"}))
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameEnded}))

	assert.Equal(t, recognition.EventBegan, sink.next(t).Type)
	ev := sink.next(t)
	assert.Equal(t, recognition.EventResult, ev.Type)
	assert.Equal(t, "go home", ev.Transcript)
	assert.Equal(t, recognition.EventEnded, sink.next(t).Type)
}

func TestRelayEngine_ErrorFrame(t *testing.T) {
	eng := newRelay()
	client, _ := relayPeer(t, eng)
	sink := newCollectSink()

	require.NoError(t, eng.Start(sink))
	readFrame(t, client)
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameError, Error: "no-speech"}))

	ev := sink.next(t)
	assert.Equal(t, recognition.EventError, ev.Type)
	assert.EqualError(t, ev.Err, "no-speech")
}

func TestRelayEngine_StopAndAbortFrames(t *testing.T) {
	eng := newRelay()
	client, _ := relayPeer(t, eng)
	sink := newCollectSink()

	require.NoError(t, eng.Start(sink))
	assert.Equal(t, speech.FrameStart, readFrame(t, client).Type)

	require.NoError(t, eng.Stop())
	assert.Equal(t, speech.FrameStop, readFrame(t, client).Type)

	require.NoError(t, eng.Abort())
	assert.Equal(t, speech.FrameAbort, readFrame(t, client).Type)

	// Frames after abort have no session to go to.
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameResult, Transcript: "late"}))
	require.NoError(t, eng.Send(speech.Frame{Type: speech.FrameState, State: "idle"}))
	assert.Equal(t, "idle", readFrame(t, client).State)
	assert.Empty(t, sink.Types())
}

func TestRelayEngine_DisconnectFailsActiveSession(t *testing.T) {
	eng := newRelay()
	client, served := relayPeer(t, eng)
	sink := newCollectSink()

	require.NoError(t, eng.Start(sink))
	readFrame(t, client)

	require.NoError(t, client.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	ev := sink.next(t)
	assert.Equal(t, recognition.EventError, ev.Type)
	assert.Contains(t, ev.Err.Error(), "peer disconnected")

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.False(t, eng.Supported())
}

func TestRelayEngine_PeerRequests(t *testing.T) {
	eng := newRelay()
	requests := make(chan string, 4)
	eng.OnRequest(func(f speech.Frame) { requests <- f.Type })

	client, _ := relayPeer(t, eng)
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameListen}))
	require.NoError(t, client.WriteJSON(speech.Frame{Type: speech.FrameCancel}))

	for _, want := range []string{speech.FrameListen, speech.FrameCancel} {
		select {
		case got := <-requests:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("request %q not delivered", want)
		}
	}
}

func TestRelayEngine_ImmediateReplyReachesSession(t *testing.T) {
	eng := newRelay()
	client, _ := relayPeer(t, eng)

	// The peer answers every start frame without waiting.
	go func() {
		for {
			var f speech.Frame
			if err := client.ReadJSON(&f); err != nil {
				return
			}
			if f.Type != speech.FrameStart {
				continue
			}
			if client.WriteJSON(speech.Frame{Type: speech.FrameBegan}) != nil ||
				client.WriteJSON(speech.Frame{Type: speech.FrameEnded}) != nil {
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		sink := newCollectSink()
		require.NoError(t, eng.Start(sink))
		require.Equal(t, recognition.EventBegan, sink.next(t).Type, "session %d", i)
		require.Equal(t, recognition.EventEnded, sink.next(t).Type, "session %d", i)
	}
}
