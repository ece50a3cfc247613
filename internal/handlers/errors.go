package handlers

import (
	"errors"
	"strings"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindNotFound:          fiber.StatusNotFound,
	apperrors.KindConflict:          fiber.StatusConflict,
	apperrors.KindInsufficientFunds: fiber.StatusBadRequest,
	apperrors.KindForbidden:         fiber.StatusForbidden,
	apperrors.KindAlreadyCancelled:  fiber.StatusBadRequest,
	apperrors.KindAlreadyWinner:     fiber.StatusConflict,
	apperrors.KindInvalidArgument:   fiber.StatusBadRequest,
	apperrors.KindInvalidState:      fiber.StatusUnprocessableEntity,
	apperrors.KindInternal:          fiber.StatusInternalServerError,
}

// validationError carries the rejected fields of a request body.
type validationError struct {
	details []string
}

func (e *validationError) Error() string {
	return "validation failed: " + strings.Join(e.details, "; ")
}

var statusCode = map[int]string{
	fiber.StatusBadRequest:       "BAD_REQUEST",
	fiber.StatusNotFound:         "NOT_FOUND",
	fiber.StatusMethodNotAllowed: "METHOD_NOT_ALLOWED",
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	if status, ok := kindStatus[apperrors.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON error. Internal failures are logged in
// full and answered with a generic message.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	entry := log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).WithError(err)

	var de *apperrors.DomainError
	if !errors.As(err, &de) || de.Kind == apperrors.KindInternal {
		entry.Error("request failed")
		return utils.InternalError(c, "internal server error")
	}

	entry.WithField("kind", de.Kind.String()).Info("request rejected")
	return utils.Error(c, StatusFor(err), de.Code, de.Message)
}

// ErrorHandler is the fiber fallback for errors no handler answered.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *validationError
		if errors.As(err, &ve) {
			return utils.ValidationFailed(c, ve.details)
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.Error(c, fe.Code, statusCode[fe.Code], fe.Message)
		}
		return respondError(c, log, err)
	}
}
