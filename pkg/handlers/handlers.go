package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"clipstream/pkg/auth"
	"clipstream/pkg/models"
	"clipstream/pkg/store"
	"clipstream/pkg/upauth"
)

type Handler struct {
	accounts *store.Accounts
	videos   *store.Videos
	issuer   *upauth.Issuer
}

func New(db *gorm.DB, issuer *upauth.Issuer) *Handler {
	return &Handler{
		accounts: store.NewAccounts(db),
		videos:   store.NewVideos(db),
		issuer:   issuer,
	}
}

// Routes wires the API onto the engine. Video creation requires a session.
func (h *Handler) Routes(r *gin.Engine) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/videos", h.ListVideos)
	r.POST("/videos", auth.Middleware(), h.CreateVideo)
	r.GET("/upload-auth", h.UploadAuth)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var creds credentialsRequest
	if err := c.BindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	_, err := h.accounts.Register(creds.Email, creds.Password)
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and Password are required"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
	}
}

func (h *Handler) Login(c *gin.Context) {
	var creds credentialsRequest
	if err := c.BindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.accounts.Authenticate(creds.Email, creds.Password)
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and Password are required"})
		return
	case errors.Is(err, store.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	token, err := auth.GenerateJWT(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListVideos returns the feed newest-first. An empty feed keeps the
// reference behaviour: 404 with an empty videos list rather than a bare 200.
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.videos.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if len(videos) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No videos found", "videos": []models.Video{}})
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) CreateVideo(c *gin.Context) {
	var video models.Video
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&video); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	// Server-assigned fields are not accepted from the client.
	video.ID = 0

	saved, err := h.videos.Create(&video)
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
	default:
		c.JSON(http.StatusCreated, gin.H{"video": saved})
	}
}

func (h *Handler) UploadAuth(c *gin.Context) {
	creds, err := h.issuer.Issue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     creds.Token,
		"signature": creds.Signature,
		"expire":    creds.Expire,
		"publicKey": h.issuer.PublicKey(),
	})
}
