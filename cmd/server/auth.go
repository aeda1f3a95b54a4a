package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"church-library/pkg/models"
	"church-library/pkg/store"
)

// requestUser resolves the caller from the X-User-Id header. It writes the
// error response itself; callers bail out when ok is false.
func requestUser(c *gin.Context) (models.User, bool) {
	header := c.GetHeader("X-User-Id")
	if header == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-Id header is required"})
		return models.User{}, false
	}
	id, err := strconv.ParseUint(header, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-Id header is invalid"})
		return models.User{}, false
	}
	user, err := entities.UserByID(uint(id))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return models.User{}, false
	}
	return user, true
}

func requireAdmin(c *gin.Context) (models.User, bool) {
	user, ok := requestUser(c)
	if !ok {
		return models.User{}, false
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return models.User{}, false
	}
	return user, true
}

type registerRequest struct {
	Name               string `json:"name" binding:"required"`
	Age                int    `json:"age" binding:"required"`
	Email              string `json:"email" binding:"required"`
	Password           string `json:"password" binding:"required"`
	ConfirmPassword    string `json:"confirmPassword" binding:"required"`
	Phone              string `json:"phone"`
	MainChurch         string `json:"mainChurch"`
	FatherOfConfession string `json:"fatherOfConfession"`
}

func register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Age <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "age must be positive"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is invalid"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user, err := entities.AddUser(models.User{
		Name:               req.Name,
		Age:                req.Age,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Phone:              req.Phone,
		MainChurch:         req.MainChurch,
		FatherOfConfession: req.FatherOfConfession,
		Role:               models.RoleUser,
	})
	if errors.Is(err, store.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A missing account and a wrong password produce the same response.
	user, err := entities.UserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, user)
}
