package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/service"
)

// ResolveError traduz os erros tipados da camada de serviço para o
// status HTTP correspondente. Erros desconhecidos viram 500 sem vazar
// detalhes internos.
func ResolveError(c *gin.Context, err error) {
	var authErr *service.AuthorizationError
	if errors.As(err, &authErr) {
		Fail(c, http.StatusForbidden, authErr.Error())
		return
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		Fail(c, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		Fail(c, http.StatusBadRequest, validationErr.Error())
		return
	}

	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		Fail(c, http.StatusUnprocessableEntity, transitionErr.Error())
		return
	}

	var unavailableErr *service.UnavailableError
	if errors.As(err, &unavailableErr) {
		Fail(c, http.StatusServiceUnavailable, unavailableErr.Error())
		return
	}

	Fail(c, http.StatusInternalServerError, "Erro interno do servidor")
}
