package middleware

import (
	"errors"
	"net/http"

	"shopapi/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const internalErrorMessage = "An unexpected error occurred. Please try again later."

// ErrorHandler turns errors returned by handlers into `{"message": ...}` responses.
// AppErrors keep their message; unclassified errors are logged and hidden behind a
// generic 500.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		statusCode := http.StatusInternalServerError
		message := internalErrorMessage

		var appErr *apperrors.AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			statusCode = apperrors.StatusCode(appErr)
			message = appErr.Error()
		case errors.As(err, &fiberErr):
			statusCode = fiberErr.Code
			message = fiberErr.Message
		}

		if span := oteltrace.SpanFromContext(c.UserContext()); span.IsRecording() {
			span.RecordError(err)
			if statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, err.Error())
			}
		}

		entry := logger.WithError(err).WithFields(logrus.Fields{
			"status": statusCode,
			"method": c.Method(),
			"path":   c.Path(),
			"route":  c.Route().Path,
		})
		if statusCode >= http.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request rejected")
		}

		return c.Status(statusCode).JSON(fiber.Map{"message": message})
	}
}
