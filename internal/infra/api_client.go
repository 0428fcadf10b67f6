package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// StatusError is a non-2xx answer from the remote API other than 401.
// Mensaje carries the API's own message when it sent one.
type StatusError struct {
	Metodo  string
	Ruta    string
	Status  int
	Mensaje string
}

func (e *StatusError) Error() string {
	if e.Mensaje != "" {
		return fmt.Sprintf("api: %s %s returned %d: %s", e.Metodo, e.Ruta, e.Status, e.Mensaje)
	}
	return fmt.Sprintf("api: %s %s returned %d", e.Metodo, e.Ruta, e.Status)
}

// Temporal reports whether retrying can help (5xx, 408, 429).
func (e *StatusError) Temporal() bool {
	return e.Status >= 500 || e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests
}

// ErrNoEncontrado wraps every 404 so callers can errors.Is on it.
var ErrNoEncontrado = errors.New("api: not found")

func (e *StatusError) Is(target error) bool {
	return target == ErrNoEncontrado && e.Status == http.StatusNotFound
}

// APIClient talks JSON to the remote comercio REST API. Every call goes
// through the circuit breaker; only transport errors and 5xx count as
// failures, a 4xx means the API is up and answering.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
	creds      auth.CredentialProvider
}

func NewAPIClient(baseURL string, timeout time.Duration, cb *CircuitBreaker, creds auth.CredentialProvider) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
		creds:      creds,
	}
}

// WithCredentials returns a client sharing transport and breaker but taking
// tokens from p. Background jobs use it with an auth.StoreProvider.
func (c *APIClient) WithCredentials(p auth.CredentialProvider) *APIClient {
	cp := *c
	cp.creds = p
	return &cp
}

// Breaker exposes the circuit breaker for health checks and the retry cron.
func (c *APIClient) Breaker() *CircuitBreaker { return c.cb }

// ── Auth ──────────────────────────────────────────────────────────────────────

// Login posts credentials and returns the session token.
func (c *APIClient) Login(ctx context.Context, cred model.Credenciales) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", cred, &out, false); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("api: login response without token")
	}
	return out.Token, nil
}

func (c *APIClient) Registrar(ctx context.Context, r model.Registro) error {
	return c.do(ctx, http.MethodPost, "/register", r, nil, false)
}

func (c *APIClient) Perfil(ctx context.Context) (*model.Usuario, error) {
	var u model.Usuario
	if err := c.do(ctx, http.MethodGet, "/user", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) ActualizarPerfil(ctx context.Context, u model.UsuarioUpdate) error {
	return c.do(ctx, http.MethodPut, "/user", u, nil, true)
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ListarProductos returns the raw catalog; normalization happens in model.Producto.
func (c *APIClient) ListarProductos(ctx context.Context) ([]model.Producto, error) {
	var out struct {
		Productos []model.Producto `json:"productos"`
		Data      *struct {
			Productos []model.Producto `json:"productos"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/productos", nil, &out, true); err != nil {
		return nil, err
	}
	if out.Productos == nil && out.Data != nil {
		return out.Data.Productos, nil
	}
	return out.Productos, nil
}

func (c *APIClient) CrearProducto(ctx context.Context, p model.ProductoInput) error {
	return c.do(ctx, http.MethodPost, "/productos", p, nil, true)
}

func (c *APIClient) ActualizarProducto(ctx context.Context, id int64, p model.ProductoInput) error {
	p.ID = id
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/productos/%d", id), p, nil, true)
}

func (c *APIClient) EliminarProducto(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/productos/%d", id), nil, nil, true)
}

// ── Ventas / movimientos ──────────────────────────────────────────────────────

func (c *APIClient) RegistrarVenta(ctx context.Context, v model.Venta) (*model.VentaCreada, error) {
	var out model.VentaCreada
	if err := c.do(ctx, http.MethodPost, "/ventas", v, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListarVentas(ctx context.Context) ([]model.VentaRegistrada, error) {
	var out struct {
		Ventas []model.VentaRegistrada `json:"ventas"`
	}
	if err := c.do(ctx, http.MethodGet, "/ventasAll", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Ventas, nil
}

func (c *APIClient) RegistrarMovimiento(ctx context.Context, m model.Movimiento) error {
	return c.do(ctx, http.MethodPost, "/movimiento", m, nil, true)
}

func (c *APIClient) ListarMovimientos(ctx context.Context) ([]model.Movimiento, error) {
	var out struct {
		Movimientos []model.Movimiento `json:"movimientos"`
	}
	if err := c.do(ctx, http.MethodGet, "/movimientoall", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Movimientos, nil
}

// ── Cajas ─────────────────────────────────────────────────────────────────────

func (c *APIClient) ListarCajas(ctx context.Context) ([]model.Caja, error) {
	var out []model.Caja
	if err := c.do(ctx, http.MethodGet, "/cajas", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// AbrirCaja creates a caja and returns its id (response field nuevaCaja).
func (c *APIClient) AbrirCaja(ctx context.Context, saldoInicial decimal.Decimal) (int64, error) {
	var out struct {
		NuevaCaja json.RawMessage `json:"nuevaCaja"`
	}
	body := map[string]any{"saldoInicial": saldoInicial}
	if err := c.do(ctx, http.MethodPost, "/cajas", body, &out, true); err != nil {
		return 0, err
	}
	id := money.ParseRaw(out.NuevaCaja).IntPart()
	if id <= 0 {
		return 0, fmt.Errorf("api: invalid nuevaCaja %s", string(out.NuevaCaja))
	}
	return id, nil
}

func (c *APIClient) ActualizarCaja(ctx context.Context, u model.CajaUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/cajas/%d", u.ID), u, nil, true)
}

// ── Transport ─────────────────────────────────────────────────────────────────

// remoteError is the body the API sends on failure.
type remoteError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any, conToken bool) error {
	var token string
	if conToken {
		if c.creds == nil {
			return auth.ErrSinCredenciales
		}
		tok, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		token = tok
	}

	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
		body = b
	}

	// 4xx answers are returned to the caller without tripping the breaker.
	var clientErr error
	err := c.cb.Execute(func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("api: create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("api: %s %s unreachable: %w", method, path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			clientErr = auth.ErrSesionExpirada
			return nil
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			se := &StatusError{Metodo: method, Ruta: path, Status: resp.StatusCode, Mensaje: leerMensaje(resp.Body)}
			if se.Status >= 500 {
				return se
			}
			clientErr = se
			return nil
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			clientErr = fmt.Errorf("api: decode %s %s: %w", method, path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return clientErr
}

func leerMensaje(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var re remoteError
	if json.Unmarshal(raw, &re) == nil {
		switch {
		case re.Message != "" && re.Error != "":
			return re.Message + ": " + re.Error
		case re.Message != "":
			return re.Message
		case re.Error != "":
			return re.Error
		}
	}
	return ""
}
