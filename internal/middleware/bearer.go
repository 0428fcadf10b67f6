package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"comercioapp/internal/apierror"
	"comercioapp/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Bearer requires an Authorization: Bearer header and puts the token in the
// request context, where auth.ContextProvider picks it up for remote calls.
// Browsers cannot set headers on a websocket upgrade, so upgrades may pass
// the token as ?token= instead.
// The gateway does not validate the token: the remote API does.
func Bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenDeHeader(c.GetHeader("Authorization"))
		if token == "" && websocket.IsWebSocketUpgrade(c.Request) {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}
		c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

func tokenDeHeader(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RecordarToken saves the request's token for the caja in the :id path param,
// so background retries for that caja can authenticate. Best effort.
func RecordarToken(store auth.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cajaID, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil && cajaID > 0 {
			if token, ok := auth.TokenFromContext(c.Request.Context()); ok {
				if err := store.Guardar(c.Request.Context(), cajaID, token); err != nil {
					log.Warn().Err(err).Int64("caja_id", cajaID).Msg("token store: save failed")
				}
			}
		}
		c.Next()
	}
}
