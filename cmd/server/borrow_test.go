package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-library/pkg/models"
)

func TestCreateBorrow(t *testing.T) {
	notifications := setupServerTest(t)
	admin := seedAdmin(t)
	member := seedMember(t, "mina@mail.com")
	_, book := seedCategoryAndBook(t)

	w := perform(t, createBorrow, "POST", "/api/v1/borrows",
		gin.H{"userId": member.ID, "bookId": book.ID}, admin.ID)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, models.StatusActive, response["status"])
	assert.NotEmpty(t, response["recordUid"])
	assert.Equal(t, float64(defaultLoanFee), response["price"])

	var updated models.Book
	require.NoError(t, db.First(&updated, "id = ?", book.ID).Error)
	assert.False(t, updated.Available)

	assert.Len(t, notifications.calls, 1)
	assert.Contains(t, notifications.calls[0], member.Name)
	assert.Contains(t, notifications.calls[0], book.Name)
}

func TestCreateBorrowUnavailableBook(t *testing.T) {
	notifications := setupServerTest(t)
	admin := seedAdmin(t)
	member := seedMember(t, "mina@mail.com")
	_, book := seedCategoryAndBook(t)

	w := perform(t, createBorrow, "POST", "/api/v1/borrows",
		gin.H{"userId": member.ID, "bookId": book.ID}, admin.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, createBorrow, "POST", "/api/v1/borrows",
		gin.H{"userId": member.ID, "bookId": book.ID}, admin.ID)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, notifications.calls, 1)
}

func TestCreateBorrowUnknownUser(t *testing.T) {
	setupServerTest(t)
	admin := seedAdmin(t)
	_, book := seedCategoryAndBook(t)

	w := perform(t, createBorrow, "POST", "/api/v1/borrows",
		gin.H{"userId": 999, "bookId": book.ID}, admin.ID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReturnBorrow(t *testing.T) {
	setupServerTest(t)
	admin := seedAdmin(t)
	member := seedMember(t, "mina@mail.com")
	_, book := seedCategoryAndBook(t)

	w := perform(t, createBorrow, "POST", "/api/v1/borrows",
		gin.H{"userId": member.ID, "bookId": book.ID}, admin.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	recordUid := decodeBody(t, w)["recordUid"].(string)

	w = perform(t, returnBorrow, "POST", "/api/v1/borrows/"+recordUid+"/return", nil, admin.ID,
		gin.Param{Key: "recordUid", Value: recordUid})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusReturned, decodeBody(t, w)["status"])

	var updated models.Book
	require.NoError(t, db.First(&updated, "id = ?", book.ID).Error)
	assert.True(t, updated.Available)

	// Settling twice is a conflict.
	w = perform(t, returnBorrow, "POST", "/api/v1/borrows/"+recordUid+"/return", nil, admin.ID,
		gin.Param{Key: "recordUid", Value: recordUid})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReturnBorrowUnknownRecord(t *testing.T) {
	setupServerTest(t)
	admin := seedAdmin(t)

	w := perform(t, returnBorrow, "POST", "/api/v1/borrows/missing/return", nil, admin.ID,
		gin.Param{Key: "recordUid", Value: "missing"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowHistoryBuckets(t *testing.T) {
	setupServerTest(t)
	member := seedMember(t, "mina@mail.com")
	_, book := seedCategoryAndBook(t)

	now := time.Now()
	activeRecord := models.BorrowRecord{
		RecordUid:  "11111111-1111-1111-1111-111111111111",
		UserID:     member.ID,
		BookID:     book.ID,
		BorrowDate: now.Add(-24 * time.Hour),
		ReturnDate: now.Add(5 * 24 * time.Hour),
		Price:      10,
		Status:     models.StatusActive,
	}
	require.NoError(t, db.Create(&activeRecord).Error)

	lapsedRecord := models.BorrowRecord{
		RecordUid:  "22222222-2222-2222-2222-222222222222",
		UserID:     member.ID,
		BookID:     book.ID,
		BorrowDate: now.Add(-20 * 24 * time.Hour),
		ReturnDate: now.Add(-6 * 24 * time.Hour),
		Price:      10,
		Status:     models.StatusActive,
	}
	require.NoError(t, db.Create(&lapsedRecord).Error)

	returnedRecord := models.BorrowRecord{
		RecordUid:  "33333333-3333-3333-3333-333333333333",
		UserID:     member.ID,
		BookID:     book.ID,
		BorrowDate: now.Add(-40 * 24 * time.Hour),
		ReturnDate: now.Add(-26 * 24 * time.Hour),
		Price:      10,
		Status:     models.StatusReturned,
	}
	require.NoError(t, db.Create(&returnedRecord).Error)

	w := perform(t, getBorrowHistory, "GET", "/api/v1/borrows/history", nil, member.ID)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	active := response["active"].([]interface{})
	completed := response["completed"].([]interface{})
	require.Len(t, active, 1)
	assert.Len(t, completed, 2)

	item := active[0].(map[string]interface{})
	assert.Equal(t, activeRecord.RecordUid, item["recordUid"])
	assert.Equal(t, book.Name, item["bookName"])
	assert.Equal(t, "ACTIVE", item["phase"])
	assert.NotEmpty(t, item["remainingDisplay"])
	progress := item["progress"].(float64)
	assert.Greater(t, progress, 0.0)
	assert.Less(t, progress, 1.0)
}

func TestBorrowHistoryOfAnotherMember(t *testing.T) {
	setupServerTest(t)
	admin := seedAdmin(t)
	member := seedMember(t, "mina@mail.com")
	other := seedMember(t, "mary@mail.com")

	w := perform(t, getBorrowHistory, "GET", "/api/v1/borrows/history?userId="+itoa(other.ID), nil, member.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Querying your own id explicitly is allowed.
	w = perform(t, getBorrowHistory, "GET", "/api/v1/borrows/history?userId="+itoa(member.ID), nil, member.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, getBorrowHistory, "GET", "/api/v1/borrows/history?userId="+itoa(member.ID), nil, admin.ID)
	assert.Equal(t, http.StatusOK, w.Code)
}
