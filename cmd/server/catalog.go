package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"church-library/pkg/models"
	"church-library/pkg/store"
)

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is invalid"})
		return 0, false
	}
	return uint(id), true
}

// Categories

func getCategories(c *gin.Context) {
	if _, ok := requestUser(c); !ok {
		return
	}

	categories, err := entities.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func createCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := entities.AddCategory(models.Category{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

type categoryUpdateRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

func updateCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	category, err := entities.UpdateCategory(id, fields)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, category)
}

func deleteCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := entities.DeleteCategory(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if errors.Is(err, store.ErrHasDependents) {
		c.JSON(http.StatusConflict, gin.H{"error": "category still has books assigned to it"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Books

func getBooks(c *gin.Context) {
	if _, ok := requestUser(c); !ok {
		return
	}

	var books []models.Book
	var err error
	switch {
	case c.Query("category") != "":
		categoryID, parseErr := strconv.ParseUint(c.Query("category"), 10, 32)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category is invalid"})
			return
		}
		books, err = entities.BooksByCategory(uint(categoryID))
	case c.Query("available") == "true":
		books, err = entities.AvailableBooks()
	default:
		books, err = entities.Books()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": books})
}

type bookRequest struct {
	Name        string  `json:"name" binding:"required"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  uint    `json:"category" binding:"required"`
}

func createBook(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	book, err := entities.AddBook(models.Book{
		Name:        req.Name,
		Author:      req.Author,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Available:   true,
	})
	if errors.Is(err, store.ErrUnknownCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category does not exist"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, book)
}

type bookUpdateRequest struct {
	Name        *string  `json:"name"`
	Author      *string  `json:"author"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	CategoryID  *uint    `json:"category"`
}

func updateBook(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}

	book, err := entities.UpdateBook(id, fields)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if errors.Is(err, store.ErrUnknownCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category does not exist"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

func deleteBook(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := entities.DeleteBook(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Users

func getUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	users, err := entities.Users()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func getUser(c *gin.Context) {
	caller, ok := requestUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleAdmin && caller.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another member"})
		return
	}

	user, err := entities.UserByID(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

type userUpdateRequest struct {
	Name               *string `json:"name"`
	Age                *int    `json:"age"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	MainChurch         *string `json:"mainChurch"`
	FatherOfConfession *string `json:"fatherOfConfession"`
}

// updateUser edits profile fields. The role is not part of the request
// shape on purpose.
func updateUser(c *gin.Context) {
	caller, ok := requestUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleAdmin && caller.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot edit another member"})
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Age != nil && *req.Age <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "age must be positive"})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.MainChurch != nil {
		fields["main_church"] = *req.MainChurch
	}
	if req.FatherOfConfession != nil {
		fields["father_of_confession"] = *req.FatherOfConfession
	}

	user, err := entities.UpdateUser(id, fields)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if errors.Is(err, store.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}
