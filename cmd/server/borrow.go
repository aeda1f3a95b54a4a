package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"church-library/pkg/borrow"
	"church-library/pkg/lifecycle"
	"church-library/pkg/models"
)

const (
	defaultLoanDays = 14
	defaultLoanFee  = 10
)

type borrowRequest struct {
	UserID uint     `json:"userId" binding:"required"`
	BookID uint     `json:"bookId" binding:"required"`
	Days   int      `json:"days"`
	Price  *float64 `json:"price"`
}

func createBorrow(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Days == 0 {
		req.Days = defaultLoanDays
	}
	price := float64(defaultLoanFee)
	if req.Price != nil {
		price = *req.Price
	}

	borrowDate := time.Now()
	returnDate := borrowDate.AddDate(0, 0, req.Days)

	record, err := loans.Borrow(req.UserID, req.BookID, borrowDate, returnDate, price)
	switch {
	case errors.Is(err, borrow.ErrBookUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "book is not available"})
		return
	case errors.Is(err, borrow.ErrUnknownUser):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case errors.Is(err, borrow.ErrInvalidLoan):
		c.JSON(http.StatusBadRequest, gin.H{"error": "loan parameters are invalid"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

func returnBorrow(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	record, err := loans.Return(c.Param("recordUid"), time.Now())
	switch {
	case errors.Is(err, borrow.ErrUnknownRecord):
		c.JSON(http.StatusNotFound, gin.H{"error": "borrow record not found"})
		return
	case errors.Is(err, borrow.ErrAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{"error": "borrow record is already settled"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// getBorrowHistory returns the caller's loans split into active and
// completed buckets, each item carrying the derived countdown state. An
// admin may pass userId to inspect another member's history.
func getBorrowHistory(c *gin.Context) {
	caller, ok := requestUser(c)
	if !ok {
		return
	}

	userID := caller.ID
	if param := c.Query("userId"); param != "" {
		id, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is invalid"})
			return
		}
		if caller.Role != models.RoleAdmin && uint(id) != caller.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another member's history"})
			return
		}
		userID = uint(id)
	}

	records, err := entities.BorrowHistory(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	active := make([]gin.H, 0)
	completed := make([]gin.H, 0)
	for _, record := range records {
		item := historyItem(record, now)
		if record.Status == models.StatusActive && !lifecycle.TimeRemaining(record.ReturnDate, now).IsZero() {
			active = append(active, item)
		} else {
			completed = append(completed, item)
		}
	}

	c.JSON(http.StatusOK, gin.H{"active": active, "completed": completed})
}

func historyItem(record models.BorrowRecord, now time.Time) gin.H {
	bookName := ""
	if book, err := entities.BookByID(record.BookID); err == nil {
		bookName = book.Name
	}

	remaining := lifecycle.TimeRemaining(record.ReturnDate, now)
	return gin.H{
		"recordUid":        record.RecordUid,
		"bookId":           record.BookID,
		"bookName":         bookName,
		"borrowDate":       record.BorrowDate,
		"returnDate":       record.ReturnDate,
		"price":            record.Price,
		"status":           record.Status,
		"phase":            lifecycle.Classify(record.ReturnDate, now),
		"timeRemaining":    remaining,
		"remainingDisplay": lifecycle.FormatRemaining(remaining),
		"progress":         lifecycle.ProgressFraction(record.BorrowDate, record.ReturnDate, now),
	}
}
