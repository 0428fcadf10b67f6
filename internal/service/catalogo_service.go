package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	catalogoVersionKey = "catalogo:version"
	// upper bound for the in-process copy used when Redis is not configured
	catalogoLocalTTL = 30 * time.Second
)

type CatalogoService interface {
	Listar(ctx context.Context, filtro dto.FiltroProductos) ([]model.Producto, error)
	BuscarPorID(ctx context.Context, id int64) (model.Producto, error)
	Crear(ctx context.Context, in model.ProductoInput) error
	Actualizar(ctx context.Context, id int64, in model.ProductoInput) error
	Activar(ctx context.Context, id int64) error
	Desactivar(ctx context.Context, id int64) error
	Eliminar(ctx context.Context, id int64) error
	Resumen(ctx context.Context) (*dto.ResumenInventario, error)
}

type catalogoService struct {
	api     CatalogoAPI
	rdb     *redis.Client // nil falls back to local
	ttl     time.Duration
	metrics *Metrics
	local   *catalogoLocal
	now     func() time.Time
}

func NewCatalogoService(api CatalogoAPI, rdb *redis.Client, ttl time.Duration, metrics *Metrics) CatalogoService {
	s := &catalogoService{api: api, rdb: rdb, ttl: ttl, metrics: metrics, now: time.Now}
	if rdb == nil {
		localTTL := catalogoLocalTTL
		if ttl > 0 && ttl < localTTL {
			localTTL = ttl
		}
		s.local = &catalogoLocal{ttl: localTTL, entradas: make(map[string]entradaCatalogo)}
	}
	return s
}

// catalogoLocal keeps the last catalog per token for a few seconds so that a
// burst of scans does not refetch GET /productos on every item.
type catalogoLocal struct {
	mu       sync.Mutex
	ttl      time.Duration
	entradas map[string]entradaCatalogo
}

type entradaCatalogo struct {
	ps    []model.Producto
	vence time.Time
}

func (l *catalogoLocal) get(key string, now time.Time) ([]model.Producto, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entradas[key]
	if !ok || !now.Before(e.vence) {
		return nil, false
	}
	return e.ps, true
}

func (l *catalogoLocal) set(key string, ps []model.Producto, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entradas {
		if !now.Before(e.vence) {
			delete(l.entradas, k)
		}
	}
	l.entradas[key] = entradaCatalogo{ps: ps, vence: now.Add(l.ttl)}
}

func (l *catalogoLocal) limpiar() {
	l.mu.Lock()
	clear(l.entradas)
	l.mu.Unlock()
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *catalogoService) Listar(ctx context.Context, filtro dto.FiltroProductos) ([]model.Producto, error) {
	todos, err := s.todos(ctx)
	if err != nil {
		return nil, err
	}
	return filtrarProductos(todos, filtro), nil
}

func filtrarProductos(ps []model.Producto, f dto.FiltroProductos) []model.Producto {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	out := make([]model.Producto, 0, len(ps))
	for _, p := range ps {
		switch f.Estado {
		case "activos":
			if !p.Activo {
				continue
			}
		case "inactivos":
			if p.Activo {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Nombre+" "+p.Categoria), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// todos returns the normalized catalog, from Redis when possible.
func (s *catalogoService) todos(ctx context.Context) ([]model.Producto, error) {
	if s.local != nil {
		return s.todosLocal(ctx)
	}
	key := s.cacheKey(ctx)
	if key != "" {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var ps []model.Producto
			if jsonErr := json.Unmarshal(cached, &ps); jsonErr == nil {
				s.metrics.CatalogoCache(true)
				return ps, nil
			}
		}
		s.metrics.CatalogoCache(false)
	}

	ps, err := s.remoto(ctx)
	if err != nil {
		return nil, err
	}

	// Populate cache, best effort
	if key != "" {
		if b, jsonErr := json.Marshal(ps); jsonErr == nil {
			_ = s.rdb.Set(context.WithoutCancel(ctx), key, b, s.ttl).Err()
		}
	}
	return ps, nil
}

func (s *catalogoService) todosLocal(ctx context.Context) ([]model.Producto, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return s.remoto(ctx)
	}
	key := hashToken(token)
	if ps, hit := s.local.get(key, s.now()); hit {
		s.metrics.CatalogoCache(true)
		return ps, nil
	}
	s.metrics.CatalogoCache(false)
	ps, err := s.remoto(ctx)
	if err != nil {
		return nil, err
	}
	s.local.set(key, ps, s.now())
	return ps, nil
}

// remoto fetches the catalog and drops the rows that cannot be sold.
func (s *catalogoService) remoto(ctx context.Context) ([]model.Producto, error) {
	raw, err := s.api.ListarProductos(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrSesionExpirada) || errors.Is(err, auth.ErrSinCredenciales) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogoNoDisponible, err)
	}
	ps := make([]model.Producto, 0, len(raw))
	for _, p := range raw {
		if p.Valido() {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// cacheKey scopes entries by catalog version and caller token so that two
// accounts on the same gateway never share a catalog. Empty means no cache.
func (s *catalogoService) cacheKey(ctx context.Context) string {
	if s.rdb == nil {
		return ""
	}
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return ""
	}
	version, err := s.rdb.Get(ctx, catalogoVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ""
	}
	return fmt.Sprintf("catalogo:v%d:%s", version, hashToken(token))
}

func (s *catalogoService) invalidar(ctx context.Context) {
	if s.local != nil {
		s.local.limpiar()
		return
	}
	if err := s.rdb.Incr(context.WithoutCancel(ctx), catalogoVersionKey).Err(); err != nil {
		log.Warn().Err(err).Msg("catalogo: cache invalidation failed")
	}
}

// ── Lookup ────────────────────────────────────────────────────────────────────

func (s *catalogoService) BuscarPorID(ctx context.Context, id int64) (model.Producto, error) {
	ps, err := s.todos(ctx)
	if err != nil {
		return model.Producto{}, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Producto{}, ErrProductoNoEncontrado
}

// ── Writes ────────────────────────────────────────────────────────────────────
// Every write invalidates the cache, even on error: the remote state is unknown.

func (s *catalogoService) Crear(ctx context.Context, in model.ProductoInput) error {
	in.ID = 0
	if in.Activo == nil {
		activo := true
		in.Activo = &activo
	}
	defer s.invalidar(ctx)
	return s.api.CrearProducto(ctx, in)
}

func (s *catalogoService) Actualizar(ctx context.Context, id int64, in model.ProductoInput) error {
	defer s.invalidar(ctx)
	return s.api.ActualizarProducto(ctx, id, in)
}

func (s *catalogoService) Activar(ctx context.Context, id int64) error {
	return s.cambiarEstado(ctx, id, true)
}

func (s *catalogoService) Desactivar(ctx context.Context, id int64) error {
	return s.cambiarEstado(ctx, id, false)
}

func (s *catalogoService) cambiarEstado(ctx context.Context, id int64, activo bool) error {
	p, err := s.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	in := model.FromProducto(p)
	in.Activo = &activo
	defer s.invalidar(ctx)
	return s.api.ActualizarProducto(ctx, id, in)
}

func (s *catalogoService) Eliminar(ctx context.Context, id int64) error {
	defer s.invalidar(ctx)
	return s.api.EliminarProducto(ctx, id)
}

// ── Resumen ───────────────────────────────────────────────────────────────────

func (s *catalogoService) Resumen(ctx context.Context) (*dto.ResumenInventario, error) {
	ps, err := s.todos(ctx)
	if err != nil {
		return nil, err
	}
	return resumirInventario(ps), nil
}

func resumirInventario(ps []model.Producto) *dto.ResumenInventario {
	r := &dto.ResumenInventario{ValorInventario: decimal.Zero, Categorias: []string{}}
	vistas := make(map[string]bool)
	for _, p := range ps {
		if p.Categoria != "" && !vistas[p.Categoria] {
			vistas[p.Categoria] = true
			r.Categorias = append(r.Categorias, p.Categoria)
		}
		if !p.Activo {
			r.Inactivos++
			continue
		}
		r.Activos++
		r.StockTotal += p.Cantidad
		r.ValorInventario = r.ValorInventario.Add(p.PrecioCompra.Mul(decimal.NewFromInt(int64(p.Cantidad))))
	}
	r.ValorInventario = money.Round2(r.ValorInventario)
	return r
}
