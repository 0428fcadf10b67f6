package middleware

import (
	"net/http"
	"sync"
	"time"

	"comercioapp/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana counts requests of one key within a fixed window.
type ventana struct {
	count     int
	windowEnd time.Time
}

// limitador is a fixed-window counter per client IP.
type limitador struct {
	mu       sync.Mutex
	entradas map[string]*ventana
	limite   int
	duracion time.Duration
}

func nuevoLimitador(limite int, duracion time.Duration) *limitador {
	l := &limitador{entradas: make(map[string]*ventana), limite: limite, duracion: duracion}
	registrarParaPurga(l)
	return l
}

func (l *limitador) permitir(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entradas[key]
	if !ok || now.After(v.windowEnd) {
		v = &ventana{windowEnd: now.Add(l.duracion)}
		l.entradas[key] = v
	}
	v.count++
	return v.count <= l.limite
}

func (l *limitador) purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.entradas {
		if now.After(v.windowEnd) {
			delete(l.entradas, k)
			n++
		}
	}
	return n
}

func (l *limitador) middleware(mensaje string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.permitir(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(mensaje))
			return
		}
		c.Next()
	}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login and register attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return nuevoLimitador(20, time.Minute).middleware("Demasiados intentos de login. Intente en 1 minuto.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter allows limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return nuevoLimitador(limit, window).middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired windows so IPs that never return do not pile up.

const purgeInterval = 5 * time.Minute

var (
	purgaMu     sync.Mutex
	limitadores []*limitador
	purgaOnce   sync.Once
)

func registrarParaPurga(l *limitador) {
	purgaMu.Lock()
	limitadores = append(limitadores, l)
	purgaMu.Unlock()
	purgaOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purgaMu.Lock()
		total := 0
		for _, l := range limitadores {
			total += l.purgar(now)
		}
		purgaMu.Unlock()
		if total > 0 {
			log.Debug().Int("purged", total).Msg("rate limiter: expired entries purged")
		}
	}
}
