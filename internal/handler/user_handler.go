package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/internal/middleware"
)

// UserHandler handles account registration and the current user's profile
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"max=255"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{Email: user.Email, Name: user.Name}
}

// Create handles POST /api/user/create
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Me handles GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(middleware.CurrentUser(c)))
}

// UpdateMe handles PUT (full) and PATCH (partial) on /api/user/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	p, err := decodePayload(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	input := service.UserUpdate{
		Email:    p.Text("email"),
		Password: p.Text("password"),
		Name:     p.Text("name"),
	}
	if input.Email != nil && !validEmail(*input.Email) {
		p.verr.Add("email", msgEmailInvalid)
	}
	if err := p.Err(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.userService.UpdateUser(c.Request.Context(), user.ID, input, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(updated))
}
