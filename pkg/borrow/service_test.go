package borrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"church-library/pkg/database"
	"church-library/pkg/models"
)

type recordingNotifier struct {
	calls []string
}

func (r *recordingNotifier) SendBorrowConfirmation(userName, bookName, returnDateDisplay string) {
	r.calls = append(r.calls, userName+"/"+bookName+"/"+returnDateDisplay)
}

func setupTest(t *testing.T) (*gorm.DB, *Service, *recordingNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	require.NoError(t, database.Migrate(db))

	notifications := &recordingNotifier{}
	return db, NewService(db, notifications), notifications
}

func seed(t *testing.T, db *gorm.DB, available bool) (models.User, models.Book) {
	category := models.Category{Name: "Spirituality", Color: "#2196F3"}
	require.NoError(t, db.Create(&category).Error)

	book := models.Book{Name: "The Life of Prayer", Author: "Fr Matta", Price: 50, CategoryID: category.ID, Available: available}
	require.NoError(t, db.Create(&book).Error)

	user := models.User{Name: "Mina", Age: 22, Email: "mina@mail.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	return user, book
}

var borrowDate = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBorrowSucceeds(t *testing.T) {
	db, svc, notifications := setupTest(t)
	user, book := seed(t, db, true)

	returnDate := borrowDate.Add(14 * 24 * time.Hour)
	record, err := svc.Borrow(user.ID, book.ID, borrowDate, returnDate, 60)
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, record.Status)
	assert.Equal(t, user.ID, record.UserID)
	assert.Equal(t, book.ID, record.BookID)
	assert.Equal(t, 60.0, record.Price)
	assert.NotEmpty(t, record.RecordUid)

	// The availability flip is observed together with the new record.
	var updated models.Book
	require.NoError(t, db.First(&updated, "id = ?", book.ID).Error)
	assert.False(t, updated.Available)

	assert.Len(t, notifications.calls, 1)
	assert.Contains(t, notifications.calls[0], "Mina")
	assert.Contains(t, notifications.calls[0], "The Life of Prayer")
}

func TestBorrowUnavailableBookFailsWithoutMutation(t *testing.T) {
	db, svc, notifications := setupTest(t)
	user, book := seed(t, db, false)

	_, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	var count int64
	require.NoError(t, db.Model(&models.BorrowRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var unchanged models.Book
	require.NoError(t, db.First(&unchanged, "id = ?", book.ID).Error)
	assert.False(t, unchanged.Available)

	assert.Empty(t, notifications.calls)
}

func TestBorrowMissingBookFailsAsUnavailable(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, _ := seed(t, db, true)

	_, err := svc.Borrow(user.ID, 999, borrowDate, borrowDate.Add(24*time.Hour), 60)
	assert.ErrorIs(t, err, ErrBookUnavailable)
}

func TestBorrowUnknownUser(t *testing.T) {
	db, svc, notifications := setupTest(t)
	_, book := seed(t, db, true)

	_, err := svc.Borrow(999, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	assert.ErrorIs(t, err, ErrUnknownUser)

	// Precondition failure leaves the book untouched.
	var unchanged models.Book
	require.NoError(t, db.First(&unchanged, "id = ?", book.ID).Error)
	assert.True(t, unchanged.Available)

	assert.Empty(t, notifications.calls)
}

func TestSecondBorrowOfSameBookRejected(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	_, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	require.NoError(t, err)

	_, err = svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	assert.ErrorIs(t, err, ErrBookUnavailable)
}

func TestBorrowRejectsInvalidLoan(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	_, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate, 60)
	assert.ErrorIs(t, err, ErrInvalidLoan)

	_, err = svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(-time.Hour), 60)
	assert.ErrorIs(t, err, ErrInvalidLoan)

	_, err = svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(time.Hour), -1)
	assert.ErrorIs(t, err, ErrInvalidLoan)
}

func TestBorrowPreconditionOrder(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, false)

	// Unavailable book wins over bad loan parameters.
	_, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate, -1)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	// Unknown user wins over bad loan parameters.
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", book.ID).Update("available", true).Error)
	_, err = svc.Borrow(999, book.ID, borrowDate, borrowDate, -1)
	assert.ErrorIs(t, err, ErrUnknownUser)

	// With both preconditions satisfied the parameters are checked last.
	_, err = svc.Borrow(user.ID, book.ID, borrowDate, borrowDate, -1)
	assert.ErrorIs(t, err, ErrInvalidLoan)
}

func TestReturnOnTime(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	returnDate := borrowDate.Add(14 * 24 * time.Hour)
	record, err := svc.Borrow(user.ID, book.ID, borrowDate, returnDate, 60)
	require.NoError(t, err)

	settled, err := svc.Return(record.RecordUid, returnDate.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, settled.Status)

	var updated models.Book
	require.NoError(t, db.First(&updated, "id = ?", book.ID).Error)
	assert.True(t, updated.Available)
}

func TestReturnAfterDueDateIsOverdue(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	returnDate := borrowDate.Add(14 * 24 * time.Hour)
	record, err := svc.Borrow(user.ID, book.ID, borrowDate, returnDate, 60)
	require.NoError(t, err)

	settled, err := svc.Return(record.RecordUid, returnDate.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, settled.Status)
}

func TestReturnErrors(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	_, err := svc.Return("missing-uid", borrowDate)
	assert.ErrorIs(t, err, ErrUnknownRecord)

	record, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	require.NoError(t, err)

	_, err = svc.Return(record.RecordUid, borrowDate.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Return(record.RecordUid, borrowDate.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestBookBorrowableAgainAfterReturn(t *testing.T) {
	db, svc, _ := setupTest(t)
	user, book := seed(t, db, true)

	record, err := svc.Borrow(user.ID, book.ID, borrowDate, borrowDate.Add(24*time.Hour), 60)
	require.NoError(t, err)

	_, err = svc.Return(record.RecordUid, borrowDate.Add(time.Hour))
	require.NoError(t, err)

	second, err := svc.Borrow(user.ID, book.ID, borrowDate.Add(2*time.Hour), borrowDate.Add(48*time.Hour), 60)
	require.NoError(t, err)
	assert.NotEqual(t, record.RecordUid, second.RecordUid)
	assert.Greater(t, second.ID, record.ID)
}
