package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/magwach/twitter/internal/engine"
	"github.com/magwach/twitter/internal/models"
	"github.com/magwach/twitter/internal/repositories"
	"github.com/magwach/twitter/pkg/media"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles profile and follow-graph HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	engine         *engine.Engine
	mediaStore     media.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, eng *engine.Engine, mediaStore media.Store) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		engine:         eng,
		mediaStore:     mediaStore,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/profile/:username", h.GetProfile)
	g.GET("/users/suggested", h.GetSuggested)
	g.POST("/users/follow/:id", h.FollowToggle)
	g.POST("/users/update", h.UpdateProfile)
}

// FollowToggle follows the target user if not yet followed, and unfollows
// otherwise.
func (h *UserHandler) FollowToggle(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	state, target, err := h.engine.FollowToggle(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("%s %s successfully", target.UserName, state),
	})
}

// GetProfile returns the public profile for a handle.
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByHandle(c.Request().Context(), c.Param("username"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "User not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// GetSuggested returns a sample of users the requester does not follow yet.
func (h *UserHandler) GetSuggested(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	oid, err := parseObjectID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.userRepository.GetSuggested(c.Request().Context(), oid, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return c.JSON(http.StatusOK, users)
}

type updateProfileBody struct {
	models.UpdateProfileRequest
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password,omitempty" validate:"omitempty,min=6"`
}

// UpdateProfile applies a partial profile update: every optional field takes
// the new value if present and retains the existing one otherwise. Image
// payloads go through the media collaborator and the old assets are released
// best-effort.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	oid, err := parseObjectID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req updateProfileBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, oid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "User not found"})
	}

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide both current and new password")
	}
	if req.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid current password")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.ProfileImg != "" {
		url, err := h.swapImage(c, req.ProfileImg, user.ProfileImg)
		if err != nil {
			return err
		}
		req.ProfileImg = url
	}
	if req.CoverImg != "" {
		url, err := h.swapImage(c, req.CoverImg, user.CoverImg)
		if err != nil {
			return err
		}
		req.CoverImg = url
	}

	updated := models.ApplyProfileUpdate(*user, req.UpdateProfileRequest)
	updated.Password = user.Password
	if err := h.userRepository.UpdateProfile(ctx, &updated); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": updated})
}

// swapImage uploads a new image payload and releases the previous asset.
func (h *UserHandler) swapImage(c echo.Context, payload, oldURL string) (string, error) {
	data, err := decodeImage(payload)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid image payload")
	}
	ctx := c.Request().Context()
	url, err := h.mediaStore.Upload(ctx, data)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}
	if oldURL != "" {
		if err := h.mediaStore.Release(ctx, oldURL); err != nil {
			c.Logger().Warnf("releasing replaced image: %v", err)
		}
	}
	return url, nil
}
