package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/authz"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	khairatdomain "github.com/masjidkita/masjidkita/internal/khairat/domain"
	legacydomain "github.com/masjidkita/masjidkita/internal/legacy/domain"
	memberdomain "github.com/masjidkita/masjidkita/internal/membership/domain"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
	zakatdomain "github.com/masjidkita/masjidkita/internal/zakat/domain"
)

var errUnauthenticated = errors.New("unauthenticated")

// statusFor maps domain sentinels to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, mosquedomain.ErrInvalidMosque),
		errors.Is(err, notifdomain.ErrNotFound),
		errors.Is(err, legacydomain.ErrRecordNotFound),
		errors.Is(err, khairatdomain.ErrProgramNotFound),
		errors.Is(err, khairatdomain.ErrContributionNotFound),
		errors.Is(err, financedomain.ErrAccountNotFound),
		errors.Is(err, financedomain.ErrEntryNotFound),
		errors.Is(err, zakatdomain.ErrAssessmentNotFound):
		return http.StatusNotFound

	case errors.Is(err, memberdomain.ErrDuplicateApplication),
		errors.Is(err, memberdomain.ErrAlreadyMember),
		errors.Is(err, memberdomain.ErrInvalidStateTransition),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, mosquedomain.ErrMosqueExists),
		errors.Is(err, legacydomain.ErrAlreadyMatched),
		errors.Is(err, legacydomain.ErrNotMatched),
		errors.Is(err, khairatdomain.ErrDuplicateProgram),
		errors.Is(err, financedomain.ErrDuplicateAccount):
		return http.StatusConflict

	case errors.Is(err, memberdomain.ErrInvalidFormat):
		return http.StatusUnprocessableEntity

	case errors.Is(err, memberdomain.ErrInvalidUser),
		errors.Is(err, memberdomain.ErrInvalidDomain),
		errors.Is(err, memberdomain.ErrInvalidDecision),
		errors.Is(err, mosquedomain.ErrInvalidName),
		errors.Is(err, notifdomain.ErrInvalidUser),
		errors.Is(err, notifdomain.ErrInvalidTitle),
		errors.Is(err, legacydomain.ErrEmptyImport),
		errors.Is(err, khairatdomain.ErrInvalidProgram),
		errors.Is(err, khairatdomain.ErrInvalidAmount),
		errors.Is(err, financedomain.ErrInvalidAccount),
		errors.Is(err, financedomain.ErrInvalidAmount),
		errors.Is(err, financedomain.ErrUnbalancedEntry),
		errors.Is(err, financedomain.ErrEmptyEntry),
		errors.Is(err, zakatdomain.ErrInvalidAmount),
		errors.Is(err, zakatdomain.ErrInvalidYear),
		errors.Is(err, zakatdomain.ErrInvalidAsnaf),
		errors.Is(err, zakatdomain.ErrInvalidRecipient):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler translates errors attached by handlers into one JSON error
// body. Internal errors are logged and masked.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := statusFor(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			message = "internal_error"
		}
		c.JSON(status, gin.H{"error": message})
	}
}

// abortWithError records err and stops the handler chain; ErrorHandler
// renders it after the chain unwinds.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
