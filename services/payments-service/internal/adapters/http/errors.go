package http

import (
	"errors"
	"net/http"

	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func mapDomainError(err error) (int, string) {
	var field *httpx.FieldError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &field):
		return http.StatusBadRequest, field.Code
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, domain.CodeOf(err, "invalid_input")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.CodeOf(err, "not_found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, domain.CodeOf(err, "invalid_transition")
	case errors.Is(err, domain.ErrIdempotencyConflict), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, domain.CodeOf(err, "conflict")
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	httpx.WriteError(w, r, status, code, message)
}
