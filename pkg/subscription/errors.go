package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrTransitionNotAllowed   = errors.New("subscription: plan transition not allowed")
	ErrAcknowledgmentRequired = errors.New("subscription: scheduled change requires explicit acknowledgment")
	ErrCheckoutRequired       = errors.New("subscription: this transition goes through checkout")
	ErrMissingPriceID         = errors.New("subscription: target price ID is required")
	ErrNoCheckoutURL          = errors.New("subscription: no checkout URL returned")
	ErrSessionInvalid         = errors.New("subscription: session is invalid")
	ErrConflictingSchedule    = errors.New("subscription: canceled cycle cannot carry a scheduled plan change")
	ErrMalformedSnapshot      = errors.New("subscription: malformed snapshot in response")
	ErrUnknownPriceID         = errors.New("subscription: unknown price ID")
	ErrTrialNotOffered        = errors.New("subscription: selected plan does not offer a trial")
	ErrNothingSelected        = errors.New("subscription: no plan selected")
)

// BusinessError is a structured server-side rejection (4xx with a reason).
// The message is passed through to the user verbatim when provided; an empty
// message tells the UI to fall back to a generic localized error.
type BusinessError struct {
	Status  int
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("subscription: request rejected with status %d", e.Status)
	}
	return e.Message
}
