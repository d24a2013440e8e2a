package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/pkg/response"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

const (
	defaultPage  = 0
	defaultLimit = 10
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,notblank"`
	Email    *string `json:"email" binding:"omitempty,notblank"`
	Password *string `json:"password" binding:"omitempty,notblank"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toUserResponses(users []entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", map[string]string{"id": "must be an integer"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query parameter", map[string]string{key: "must be an integer"})
		return 0, false
	}
	return v, true
}

// Create POST /users/
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), userapp.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// List GET /users/?page=&limit=
func (h *UserHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", defaultPage)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok {
		return
	}
	users, err := h.Svc.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

// Update PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), id, userapp.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// Delete DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// Filter GET /users/filter/?username=&email=&sort_by=&order=
func (h *UserHandler) Filter(c *gin.Context) {
	users, err := h.Svc.Filter(c.Request.Context(), userapp.FilterInput{
		Username: c.Query("username"),
		Email:    c.Query("email"),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

// Me GET /users/me (bearer token required)
func (h *UserHandler) Me(c *gin.Context) {
	username := c.GetString("username")
	u, err := h.Svc.GetByUsername(c.Request.Context(), username)
	if errors.Is(err, apperror.ErrNotFound) {
		// token outlived its subject
		response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
		return
	}
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// Search GET /users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, ok := queryInt(c, "size", userapp.DefaultSearchSize)
	if !ok {
		return
	}
	docs, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]userResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, userResponse{ID: d.ID, Username: d.Username, Email: d.Email})
	}
	c.JSON(http.StatusOK, out)
}
