package repository

import (
	"context"
	"fmt"

	"InsiderPulse/internal/domain/models"
)

// storeError wraps a driver failure as ErrStoreUnavailable. When the caller's
// context is already done the context error is returned instead, so a client
// going away is never reported as a store outage.
func storeError(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", what, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, what, err)
}
