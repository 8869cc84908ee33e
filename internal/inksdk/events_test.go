package inksdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/inkwell-cms/inkwell/internal/inkmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsConnectAndReceive(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/events", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "")

		msg := `{"id": "m1", "typ": "content-changed", "dat": {"sto": "content", "id": "p1", "slg": "guides/intro"}}`
		require.NoError(t, conn.Write(r.Context(), websocket.MessageText, []byte(msg)))

		// hold the connection open until the client goes away
		<-r.Context().Done()
	}))
	defer srv.Close()

	events := newEventsAPI(srv.URL, "test-key")
	defer events.Close()

	require.NoError(t, events.Connect(context.Background()))
	assert.True(t, events.IsConnected())
	assert.Equal(t, "Bearer test-key", gotAuth)

	select {
	case msg := <-events.Get():
		assert.Equal(t, "m1", msg.Id)
		assert.Equal(t, inkmsg.MsgContentChanged, msg.Type)
		change, ok := msg.Data.(inkmsg.ContentChange)
		require.True(t, ok)
		assert.Equal(t, "content", change.Store)
		assert.Equal(t, "p1", change.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("no push message arrived")
	}
}

func TestEventsURLSchemes(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/v1/events"},
		{"https://ink.example.com", "wss://ink.example.com/api/v1/events"},
		{"https://ink.example.com/base/", "wss://ink.example.com/base/api/v1/events"},
	}
	for _, tc := range cases {
		e := newEventsAPI(tc.base, "")
		got, err := e.fullURL()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	e := newEventsAPI("ftp://nope", "")
	_, err := e.fullURL()
	assert.Error(t, err)
}
