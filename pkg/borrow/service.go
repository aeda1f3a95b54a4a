// Package borrow implements the loan workflow: creating a borrow record
// for a scanned member and settling it when the book comes back.
package borrow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"church-library/pkg/models"
	"church-library/pkg/notifier"
)

var (
	ErrBookUnavailable = errors.New("book is not available for borrowing")
	ErrUnknownUser     = errors.New("unknown user")
	ErrUnknownRecord   = errors.New("borrow record not found")
	ErrAlreadySettled  = errors.New("borrow record is already settled")
	ErrInvalidLoan     = errors.New("invalid loan parameters")
)

type Service struct {
	db     *gorm.DB
	notify notifier.Notifier
}

func NewService(db *gorm.DB, notify notifier.Notifier) *Service {
	return &Service{db: db, notify: notify}
}

// Borrow validates the loan and creates the record. The record creation
// and the availability flip happen in one transaction: no reader can ever
// observe the record without the book being marked unavailable, or the
// other way around. Preconditions are checked in order: book availability
// first, then the user, then the loan parameters.
func (s *Service) Borrow(userID, bookID uint, borrowDate, returnDate time.Time, price float64) (models.BorrowRecord, error) {
	var record models.BorrowRecord
	var book models.Book
	var user models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "id = ?", bookID).Error; err != nil {
			return ErrBookUnavailable
		}
		if !book.Available {
			return ErrBookUnavailable
		}
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return ErrUnknownUser
		}
		if !returnDate.After(borrowDate) || price < 0 {
			return ErrInvalidLoan
		}

		record = models.BorrowRecord{
			RecordUid:  uuid.New().String(),
			UserID:     userID,
			BookID:     bookID,
			BorrowDate: borrowDate,
			ReturnDate: returnDate,
			Price:      price,
			Status:     models.StatusActive,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		book.Available = false
		return tx.Save(&book).Error
	})
	if err != nil {
		return models.BorrowRecord{}, err
	}

	// Fire-and-forget: a failed notification never unwinds the loan.
	if s.notify != nil {
		s.notify.SendBorrowConfirmation(user.Name, book.Name, record.ReturnDate.Format("2006-01-02"))
	}

	return record, nil
}

// Return settles an active record and makes the book borrowable again, in
// one transaction. The stored status becomes RETURNED, or OVERDUE when the
// book comes back after its due date.
func (s *Service) Return(recordUid string, now time.Time) (models.BorrowRecord, error) {
	var record models.BorrowRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "record_uid = ?", recordUid).Error; err != nil {
			return ErrUnknownRecord
		}
		if record.Status != models.StatusActive {
			return ErrAlreadySettled
		}

		record.Status = models.StatusReturned
		if now.After(record.ReturnDate) {
			record.Status = models.StatusOverdue
		}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		var book models.Book
		if err := tx.First(&book, "id = ?", record.BookID).Error; err != nil {
			// The book row may have been deleted while on loan; the record
			// still settles.
			return nil
		}
		book.Available = true
		return tx.Save(&book).Error
	})
	if err != nil {
		return models.BorrowRecord{}, err
	}

	return record, nil
}
