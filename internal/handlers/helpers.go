package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/magwach/twitter/internal/engine"
	"github.com/magwach/twitter/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID converts a request-supplied hex id into an ObjectID.
func parseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// getUserIDFromContext returns the authenticated user's id (hex) placed in
// the context by the JWT middleware, or "" when unauthenticated.
func getUserIDFromContext(c echo.Context) string {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return ""
	}
	return claims.UserID
}

// respondError maps the engine error taxonomy onto HTTP statuses. Internal
// failures never leak store-level detail to the client.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, engine.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Server Error"
	}
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// decodeImage decodes a base64 image payload, tolerating a data-URI prefix.
func decodeImage(payload string) ([]byte, error) {
	if payload == "" {
		return nil, nil
	}
	if idx := strings.Index(payload, ","); idx != -1 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
