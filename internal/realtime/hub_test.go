package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/ticket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conectar(t *testing.T, h *Hub, cajaID int64) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, h.Serve(w, r, cajaID, dto.NewTicketResponse(cajaID, ticket.New())))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func leer(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestHub_PublicaSoloALaCaja(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	caja1 := conectar(t, h, 1)
	caja2 := conectar(t, h, 2)

	// initial snapshots
	assert.Equal(t, int64(1), leer(t, caja1).CajaID)
	assert.Equal(t, int64(2), leer(t, caja2).CajaID)
	require.Eventually(t, func() bool { return h.Clientes() == 2 }, time.Second, 5*time.Millisecond)

	snap := dto.TicketResponse{CajaID: 1, Cobrando: true, Lineas: []dto.LineaResponse{}}
	h.Publicar(1, snap)

	m := leer(t, caja1)
	assert.Equal(t, TypeTicket, m.Type)
	var got dto.TicketResponse
	require.NoError(t, json.Unmarshal(m.Data, &got))
	assert.True(t, got.Cobrando)

	require.NoError(t, caja2.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := caja2.ReadMessage()
	assert.Error(t, err, "caja 2 must not receive caja 1 snapshots")
}

func TestHub_PublicarNoBloqueaSinRun(t *testing.T) {
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publicar(1, dto.TicketResponse{CajaID: 1})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publicar blocked")
	}
}

func TestHub_RechazaOrigenNoPermitido(t *testing.T) {
	h := NewHub([]string{"http://caja.local:5173"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, 1, dto.NewTicketResponse(1, ticket.New()))
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://otro.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://caja.local:5173"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, TypeTicket, leer(t, conn).Type)
}

func TestHub_ServeTrasCierreNoBloquea(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	finRun := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(finRun)
	}()
	cancel()
	<-finRun

	resultado := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resultado <- h.Serve(w, r, 1, dto.NewTicketResponse(1, ticket.New()))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err == nil {
		defer conn.Close()
	}
	select {
	case err := <-resultado:
		assert.ErrorIs(t, err, ErrHubCerrado)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve blocked after shutdown")
	}
}
