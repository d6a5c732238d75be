package handlers

import (
	"errors"
	"fmt"

	"github.com/yungbote/dailylesson-backend/internal/platform/apierr"
)

var (
	errCardsDisabled = errors.New("title cards are not configured")
	errInvalidBody   = apierr.BadRequest(apierr.CodeInvalidRequest, "invalid request body")
)

func errInvalidQuery(name string) error {
	return fmt.Errorf("invalid %s", name)
}
