package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

// RoleMiddleware verifica que o ator autenticado tem um dos papéis
// permitidos. A verificação fina (dono do laudo etc.) fica na camada
// de serviço; aqui só o corte grosso por papel.
func RoleMiddleware(allowedRoles ...entity.AppRole) gin.HandlerFunc {
	roleSet := make(map[entity.AppRole]bool)
	for _, r := range allowedRoles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Ator não encontrado no contexto"})
			c.Abort()
			return
		}

		if !roleSet[actor.Role] {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Permissões insuficientes"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AgentOnly restringe a rota a agentes de mesa
func AgentOnly() gin.HandlerFunc {
	return RoleMiddleware(entity.RoleAgent)
}
