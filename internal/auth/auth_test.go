package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firmar(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("clave-del-backend"))
	require.NoError(t, err)
	return tok
}

func TestVerificarExpiracion(t *testing.T) {
	now := time.Now()
	assert.NoError(t, VerificarExpiracion(firmar(t, now.Add(time.Hour)), now))
	assert.ErrorIs(t, VerificarExpiracion(firmar(t, now.Add(-time.Minute)), now), ErrSesionExpirada)
	assert.NoError(t, VerificarExpiracion("token-opaco", now), "non-JWT tokens are not inspected")
}

func TestContextProvider(t *testing.T) {
	p := NewContextProvider()

	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, ErrSinCredenciales)

	tok := firmar(t, time.Now().Add(time.Hour))
	got, err := p.Token(WithToken(context.Background(), tok))
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	vencido := firmar(t, time.Now().Add(-time.Hour))
	_, err = p.Token(WithToken(context.Background(), vencido))
	assert.ErrorIs(t, err, ErrSesionExpirada)
}

func TestStatic(t *testing.T) {
	got, err := Static("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = Static("").Token(context.Background())
	assert.ErrorIs(t, err, ErrSinCredenciales)
}

func TestMemoryTokenStore(t *testing.T) {
	s := NewMemoryTokenStore(time.Minute).(*memoryTokenStore)
	ctx := context.Background()

	_, err := s.Obtener(ctx, 1)
	assert.ErrorIs(t, err, ErrSinCredenciales)

	require.NoError(t, s.Guardar(ctx, 1, "t1"))
	got, err := s.Obtener(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "t1", got)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Obtener(ctx, 1)
	assert.ErrorIs(t, err, ErrSinCredenciales, "entries expire after ttl")
}

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisTokenStore(rdb, time.Hour)
	ctx := context.Background()

	_, err := s.Obtener(ctx, 3)
	assert.ErrorIs(t, err, ErrSinCredenciales)

	require.NoError(t, s.Guardar(ctx, 3, "t3"))
	got, err := s.Obtener(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "t3", got)
	assert.True(t, mr.Exists("token:caja:3"))
	assert.Equal(t, time.Hour, mr.TTL("token:caja:3"))
}

func TestStoreProvider(t *testing.T) {
	store := NewMemoryTokenStore(time.Hour)
	ctx := context.Background()
	p := NewStoreProvider(store, 5)

	_, err := p.Token(ctx)
	assert.ErrorIs(t, err, ErrSinCredenciales)

	require.NoError(t, store.Guardar(ctx, 5, firmar(t, time.Now().Add(-time.Second))))
	_, err = p.Token(ctx)
	assert.ErrorIs(t, err, ErrSesionExpirada)
}
