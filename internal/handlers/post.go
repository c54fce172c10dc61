package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"estate-service/internal/models"
	"estate-service/internal/repositories"
	"estate-service/internal/telemetry"
)

// PostHandler manages listing endpoints.
type PostHandler struct {
	posts repositories.PostRepository
	audit *telemetry.AuditEmitter
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(posts repositories.PostRepository, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{posts: posts, audit: audit}
}

type postBody struct {
	Title       string   `json:"title"`
	Price       int      `json:"price"`
	Images      []string `json:"images"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Latitude    string   `json:"latitude"`
	Longitude   string   `json:"longitude"`
	Type        string   `json:"type"`
	Property    string   `json:"property"`
	Description string   `json:"description"`
}

func (b postBody) toModel() models.Post {
	return models.Post{
		Title:       b.Title,
		Price:       b.Price,
		Images:      pq.StringArray(b.Images),
		Address:     b.Address,
		City:        b.City,
		Bedrooms:    b.Bedrooms,
		Bathrooms:   b.Bathrooms,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Type:        b.Type,
		Property:    b.Property,
		Description: b.Description,
	}
}

// GetPosts runs the filtered paginated search. Authenticated callers get an
// isSaved annotation on every post; identity was already resolved by the
// optional-auth middleware before this handler runs.
func (h *PostHandler) GetPosts(c *gin.Context) {
	filter := models.PostFilter{
		City:      c.Query("city"),
		Type:      c.Query("type"),
		Property:  c.Query("property"),
		Bedrooms:  queryInt(c, "bedrooms", 0),
		Bathrooms: queryInt(c, "bathrooms", 0),
		MinPrice:  queryInt(c, "minPrice", 0),
		MaxPrice:  queryInt(c, "maxPrice", 0),
	}
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "perPage", 10)

	posts, total, err := h.posts.SearchPosts(c.Request.Context(), filter, page, perPage)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get posts")
		return
	}

	if userID, ok := callerID(c); ok {
		saved, err := h.posts.SavedPostIDs(c.Request.Context(), userID)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Failed to get posts")
			return
		}
		for i := range posts {
			isSaved := saved[posts[i].ID]
			posts[i].IsSaved = &isSaved
		}
	}

	respondPage(c, http.StatusOK, "Get posts successfully", posts, total)
}

// GetPost returns a single post with its owner's projection.
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			respondMessage(c, http.StatusNotFound, "Post not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Failed to get post")
		return
	}

	if userID, ok := callerID(c); ok {
		isSaved, err := h.posts.IsSaved(c.Request.Context(), userID, id)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Failed to get post")
			return
		}
		post.IsSaved = &isSaved
	}

	respondData(c, http.StatusOK, "Get post successfully", post)
}

// CreatePost inserts a listing owned by the caller.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	post := req.toModel()
	post.UserID = c.GetInt("userID")

	created, err := h.posts.CreatePost(c.Request.Context(), post)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		respondMessage(c, http.StatusInternalServerError, "Create post failed")
		return
	}

	h.emitAudit(c, "INFO", "Post created")
	respondData(c, http.StatusOK, "Create post successfully", created)
}

// UpdatePost applies a full field merge, owner only.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			respondMessage(c, http.StatusNotFound, "Post not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Update post failed")
		return
	}
	if post.UserID != c.GetInt("userID") {
		respondMessage(c, http.StatusForbidden, "Unauthorized")
		return
	}

	var req postBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	updated := req.toModel()
	updated.ID = id

	result, err := h.posts.UpdatePost(c.Request.Context(), updated)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Update post failed")
		return
	}

	respondData(c, http.StatusOK, "Update post successfully", result)
}

// DeletePost removes the post and its saved-post rows atomically, owner only.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			respondMessage(c, http.StatusNotFound, "Post not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Delete post failed")
		return
	}
	if post.UserID != c.GetInt("userID") {
		respondMessage(c, http.StatusForbidden, "Unauthorized")
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), id); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Delete post failed")
		return
	}

	h.emitAudit(c, "INFO", "Post deleted")
	respondMessage(c, http.StatusOK, "Delete post successfully")
}

// SavePost toggles the caller's bookmark on a post.
func (h *PostHandler) SavePost(c *gin.Context) {
	var req struct {
		PostID int `json:"postId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	if _, err := h.posts.GetPost(c.Request.Context(), req.PostID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			respondMessage(c, http.StatusNotFound, "Post not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Save post failed")
		return
	}

	saved, err := h.posts.ToggleSave(c.Request.Context(), c.GetInt("userID"), req.PostID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Save post failed")
		return
	}

	if saved {
		respondMessage(c, http.StatusOK, "Save post successfully")
		return
	}
	respondMessage(c, http.StatusOK, "Unsave post successfully")
}

func (h *PostHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

// callerID returns the authenticated user id when the optional-auth
// middleware resolved one.
func callerID(c *gin.Context) (int, bool) {
	if val, ok := c.Get("userID"); ok {
		if id, ok := val.(int); ok && id != 0 {
			return id, true
		}
	}
	return 0, false
}

func queryInt(c *gin.Context, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
