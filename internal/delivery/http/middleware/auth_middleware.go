package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
)

// ActorKey é a chave do gin.Context onde o ator autenticado fica
// disponível para os handlers
const ActorKey = "actor"

func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Cabeçalho Authorization obrigatório"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Formato do cabeçalho Authorization inválido"})
			c.Abort()
			return
		}

		actor, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token inválido ou expirado"})
			c.Abort()
			return
		}

		// O ator completo vai para o contexto Gin; os handlers nunca
		// remontam identidade a partir de claims soltas
		c.Set(ActorKey, *actor)
		c.Next()
	}
}

// ActorFromContext recupera o ator injetado pelo AuthMiddleware
func ActorFromContext(c *gin.Context) (entity.Actor, bool) {
	val, exists := c.Get(ActorKey)
	if !exists {
		return entity.Actor{}, false
	}
	actor, ok := val.(entity.Actor)
	return actor, ok
}
