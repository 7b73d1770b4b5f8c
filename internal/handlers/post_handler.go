package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/magwach/twitter/internal/engine"
	"github.com/magwach/twitter/internal/models"
)

// PostHandler handles post mutations and the feed queries.
type PostHandler struct {
	engine *engine.Engine
	feed   *engine.Feed
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(eng *engine.Engine, feed *engine.Feed) *PostHandler {
	return &PostHandler{engine: eng, feed: feed}
}

// RegisterPostRoutes registers post-related routes. The static feed paths
// are registered alongside the :username catch-all; echo matches static
// segments first.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/all", h.GlobalFeed)
	g.GET("/posts/following", h.FollowingFeed)
	g.GET("/posts/liked", h.LikedFeed)
	g.GET("/posts/:username", h.AuthoredFeed)
	g.POST("/posts/create", h.CreatePost)
	g.POST("/posts/like/:id", h.LikeToggle)
	g.POST("/posts/comment/:id", h.AddComment)
	g.DELETE("/posts/delete/:id", h.DeletePost)
}

// CreatePost creates a new post with text and/or an image.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	imageData, err := decodeImage(req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image payload")
	}

	post, err := h.engine.CreatePost(c.Request().Context(), currentUserID, req.Text, imageData)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// LikeToggle likes the post if the requester has not liked it yet, and
// unlikes it otherwise.
func (h *PostHandler) LikeToggle(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	state, likes, err := h.engine.LikeToggle(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	message := "Post liked successfully"
	if state == engine.StateUnliked {
		message = "Post unliked successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message, "data": likes})
}

// AddComment appends a comment to a post.
func (h *PostHandler) AddComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.engine.AddComment(c.Request().Context(), currentUserID, c.Param("id"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DeletePost deletes one of the requester's own posts.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.DeletePost(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// GlobalFeed returns every post, newest first.
func (h *PostHandler) GlobalFeed(c echo.Context) error {
	posts, err := h.feed.Global(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if len(posts) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "No posts found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts})
}

// FollowingFeed returns posts from followed users, newest first. Following
// no one is reported distinctly from an empty feed.
func (h *PostHandler) FollowingFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	posts, err := h.feed.Following(c.Request().Context(), currentUserID)
	if err != nil {
		if err == engine.ErrEmptyFollowing {
			return c.JSON(http.StatusOK, echo.Map{"message": "You are not following anyone"})
		}
		return respondError(c, err)
	}
	if len(posts) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "No posts found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": posts})
}

// AuthoredFeed returns the posts authored by the given handle, newest first.
func (h *PostHandler) AuthoredFeed(c echo.Context) error {
	posts, err := h.feed.Authored(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts})
}

// LikedFeed returns the posts currently liked by the requester.
func (h *PostHandler) LikedFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	posts, err := h.feed.Liked(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": posts})
}
