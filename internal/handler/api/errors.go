package api

import (
	"context"
	"errors"

	"InsiderPulse/internal/domain/models"
	xhttp "InsiderPulse/pkg/http"
)

// FromDomainError maps use case errors onto HTTP application errors.
func FromDomainError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrInvalidWindow):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError("not enough data for a defined value").WithError(err)
	case errors.Is(err, models.ErrStoreUnavailable):
		return xhttp.ServiceUnavailableError("transaction store unavailable").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("computation timed out").WithError(err)
	case errors.Is(err, context.Canceled):
		return xhttp.ServiceUnavailableError("request canceled").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
