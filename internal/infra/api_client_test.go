package infra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// fakeAPI records every request and answers from a per-route table.
type fakeAPI struct {
	mu       sync.Mutex
	requests []capturedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	f := &fakeAPI{routes: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
		h := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if h == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) on(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeAPI) last() capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(url string) *APIClient {
	return NewAPIClient(url, 2*time.Second, NewCircuitBreaker(DefaultCBConfig()), auth.Static("tok-123"))
}

func TestAPIClient_ListarProductos_NormalizesEntries(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("GET /productos", 200, `{"productos":[
		{"id":1,"nombre":"Yerba","precioVenta":"1500.50","descripcion":null,"categoria":null,"activo":null},
		{"id":"2","nombre":"Azucar","precioVenta":900,"activo":false}
	]}`)

	ps, err := newTestClient(srv.URL).ListarProductos(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, "Bearer tok-123", f.last().Auth)
	assert.Equal(t, int64(1), ps[0].ID)
	assert.Equal(t, "", ps[0].Descripcion)
	assert.True(t, ps[0].Activo, "null activo means active")
	assert.True(t, decimal.RequireFromString("1500.5").Equal(ps[0].PrecioVenta))
	assert.Equal(t, int64(2), ps[1].ID)
	assert.False(t, ps[1].Activo)
}

func TestAPIClient_RegistrarVenta_SendsNumbers(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("POST /ventas", 201, `{"id":77}`)

	v := model.Venta{
		Fecha:     "2025-07-01T10:00:00",
		Total:     decimal.RequireFromString("53.99"),
		CajaID:    3,
		MedioPago: model.MedioEfectivo,
		Detalles: []model.DetalleVenta{{
			ProductoID: 10, Cantidad: 3,
			PrecioUnitario: decimal.RequireFromString("19.995"),
			Total:          decimal.RequireFromString("53.99"),
			Descuento:      decimal.NewFromInt(10),
		}},
	}
	creada, err := newTestClient(srv.URL).RegistrarVenta(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, int64(77), creada.ID)

	body := f.last().Body
	assert.Equal(t, 53.99, body["total"], "money travels as a JSON number")
	assert.Equal(t, float64(3), body["cajaId"])
	assert.Equal(t, "efectivo", body["medio_pago"])
	assert.Equal(t, "2025-07-01T10:00:00", body["fecha"])
	det := body["detalles"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(10), det["producto_id"])
	assert.Equal(t, 19.995, det["precio_unitario"])
}

func TestAPIClient_Unauthorized_IsSessionExpired(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("GET /cajas", 401, `{"message":"token invalido"}`)

	c := newTestClient(srv.URL)
	_, err := c.ListarCajas(context.Background())
	assert.ErrorIs(t, err, auth.ErrSesionExpirada)
	assert.Equal(t, CBClosed, c.Breaker().State(), "401 does not count against the breaker")
}

func TestAPIClient_StatusError_CarriesRemoteMessage(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("POST /movimiento", 400, `{"message":"Datos invalidos","error":"monto requerido"}`)

	err := newTestClient(srv.URL).RegistrarMovimiento(context.Background(), model.Movimiento{Tipo: model.TipoIngreso})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Status)
	assert.Equal(t, "Datos invalidos: monto requerido", se.Mensaje)
	assert.False(t, se.Temporal())
}

func TestAPIClient_NotFound(t *testing.T) {
	_, srv := newFakeAPI(t)
	err := newTestClient(srv.URL).EliminarProducto(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestAPIClient_ServerErrorsTripBreaker(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("GET /movimientoall", 503, `{}`)

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	c := NewAPIClient(srv.URL, time.Second, cb, auth.Static("t"))

	for i := 0; i < 2; i++ {
		_, err := c.ListarMovimientos(context.Background())
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.True(t, se.Temporal())
	}
	_, err := c.ListarMovimientos(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestAPIClient_NoTokenNoRequest(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := NewAPIClient(srv.URL, time.Second, nil, auth.NewContextProvider())
	_, err := c.ListarProductos(context.Background())
	assert.ErrorIs(t, err, auth.ErrSinCredenciales)
	assert.Empty(t, f.requests)
}

func TestAPIClient_Login_NoBearer(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("POST /login", 200, `{"token":"nuevo"}`)

	tok, err := NewAPIClient(srv.URL, time.Second, nil, nil).Login(context.Background(), model.Credenciales{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "nuevo", tok)
	assert.Empty(t, f.last().Auth)
	assert.Equal(t, "a@b.c", f.last().Body["email"])
}

func TestAPIClient_AbrirCaja(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("POST /cajas", 201, `{"nuevaCaja":12}`)

	id, err := newTestClient(srv.URL).AbrirCaja(context.Background(), decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, float64(5000), f.last().Body["saldoInicial"])
}

func TestAPIClient_ListarVentas(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.on("GET /ventasAll", 200, `{"ventas":[{"id":1,"fecha":"2025-07-01T10:00:00","total":"100.5","detalles":[
		{"producto_id":3,"cantidad":2,"precio_unitario":50,"total":100,"productos":{"nombre":"Pan","precioCompra":"30"}}
	]}]}`)

	vs, err := newTestClient(srv.URL).ListarVentas(context.Background())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Len(t, vs[0].Detalles, 1)
	d := vs[0].Detalles[0]
	assert.Equal(t, "Pan", d.Producto.Nombre)
	assert.True(t, decimal.NewFromInt(30).Equal(d.Producto.PrecioCompra))
	assert.True(t, decimal.RequireFromString("100.5").Equal(vs[0].Total))
}
