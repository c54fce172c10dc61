package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estate-service/internal/repositories"
	"estate-service/internal/security"
	"estate-service/internal/telemetry"
)

// UserHandler manages profile endpoints.
type UserHandler struct {
	users  repositories.UserRepository
	posts  repositories.PostRepository
	chats  repositories.ChatRepository
	hasher security.PasswordHasher
	audit  *telemetry.AuditEmitter
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository, posts repositories.PostRepository, chats repositories.ChatRepository, hasher security.PasswordHasher, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{users: users, posts: posts, chats: chats, hasher: hasher, audit: audit}
}

// GetUsers lists all users. Password hashes never leave the model layer;
// the credential field is excluded from serialization.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get users")
		return
	}
	respondData(c, http.StatusOK, "Get users successfully", users)
}

// GetUser returns a single user by id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Failed to get user")
		return
	}
	respondData(c, http.StatusOK, "Get user successfully", user)
}

type updateUserRequest struct {
	Email           *string `json:"email"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Avatar          *string `json:"avatar"`
	PhoneNumber     *string `json:"phoneNumber"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// UpdateUser applies a partial profile update to the caller's own account.
// A password change requires the current password to verify first.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	if id != c.GetInt("userID") {
		respondMessage(c, http.StatusForbidden, "Unauthorized")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	params := repositories.UpdateUserParams{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Avatar:      req.Avatar,
		PhoneNumber: req.PhoneNumber,
	}

	if req.NewPassword != "" {
		current, err := h.users.GetUser(c.Request.Context(), id)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Update user failed")
			return
		}
		if err := h.hasher.Compare(current.Password, req.CurrentPassword); err != nil {
			respondMessage(c, http.StatusUnauthorized, "Current password is not correct")
			return
		}
		hashed, err := h.hasher.Hash(req.NewPassword)
		if err != nil {
			respondMessage(c, http.StatusInternalServerError, "Update user failed")
			return
		}
		params.Password = &hashed
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, params)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			respondMessage(c, http.StatusInternalServerError, "Email is already used")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Update user failed")
		return
	}

	h.emitAudit(c, "INFO", "User updated")
	respondData(c, http.StatusOK, "Update user successfully", user)
}

// DeleteUser removes the caller's own account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	if id != c.GetInt("userID") {
		respondMessage(c, http.StatusForbidden, "Unauthorized")
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Delete user failed")
		return
	}

	h.emitAudit(c, "INFO", "User deleted")
	respondMessage(c, http.StatusOK, "Delete user successfully")
}

// ProfilePosts returns the caller's own posts alongside their saved posts.
func (h *UserHandler) ProfilePosts(c *gin.Context) {
	userID := c.GetInt("userID")
	ctx := c.Request.Context()

	userPosts, err := h.posts.ListUserPosts(ctx, userID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get profile posts")
		return
	}
	savedPosts, err := h.posts.ListSavedPosts(ctx, userID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get profile posts")
		return
	}
	saved := true
	for i := range savedPosts {
		savedPosts[i].IsSaved = &saved
	}

	respondData(c, http.StatusOK, "Get data successfully", gin.H{
		"userPosts":  userPosts,
		"savedPosts": savedPosts,
	})
}

// Notifications returns the number of chats the caller has not seen yet.
func (h *UserHandler) Notifications(c *gin.Context) {
	count, err := h.chats.CountUnseen(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}
	respondData(c, http.StatusOK, "Get data notifications successfully", count)
}

func (h *UserHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
