package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-service/internal/middleware"
	"estate-service/internal/repositories"
	"estate-service/internal/security"
	"estate-service/internal/telemetry"
)

// AuthHandler manages registration, login and logout.
type AuthHandler struct {
	users  repositories.UserRepository
	hasher security.PasswordHasher
	tokens *security.TokenManager
	audit  *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, hasher security.PasswordHasher, tokens *security.TokenManager, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, tokens: tokens, audit: audit}
}

// Register creates an account, opens a session and returns the user without
// credential fields.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		Avatar      string `json:"avatar"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Create user failed")
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), repositories.CreateUserParams{
		Email:       req.Email,
		Password:    hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Avatar:      req.Avatar,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			respondMessage(c, http.StatusInternalServerError, "Email is already used")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Create user failed")
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Create user failed")
		return
	}

	h.emitAudit(c, "INFO", "User registered")
	respondData(c, http.StatusOK, "Create user successfully", user)
}

// Login authenticates by email and password. A missing account and a wrong
// password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "Email or password is not correct")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	if err := h.hasher.Compare(user.Password, req.Password); err != nil {
		respondMessage(c, http.StatusNotFound, "Email or password is not correct")
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.emitAudit(c, "INFO", "User logged in")
	respondData(c, http.StatusOK, "Login successfully", user)
}

// Logout clears the session cookie. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	respondMessage(c, http.StatusOK, "Logout successfully")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, userID int) error {
	token, err := h.tokens.Sign(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.tokens.TTL().Seconds()), "/", "", true, true)
	return nil
}

func (h *AuthHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
