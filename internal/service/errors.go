package service

import (
	"fmt"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

// Taxonomia de erros do motor de ciclo de vida. Os handlers traduzem
// cada tipo para o formato uniforme {success:false, error}.

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError sinaliza que um colaborador externo (storage, fila)
// está fora do ar e a funcionalidade dependente não pode atender.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	return e.Message
}

func NewUnavailableError(message string) *UnavailableError {
	return &UnavailableError{Message: message}
}

type InvalidTransitionError struct {
	From    entity.ReportStatus
	To      entity.ReportStatus
	Message string
}

func (e *InvalidTransitionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transição de status inválida: %s -> %s", e.From, e.To)
}
