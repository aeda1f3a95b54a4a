// Package store is the entity store for the library: categories, books,
// members and borrow records, with the referential guards the handlers
// rely on.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"church-library/pkg/models"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrHasDependents   = errors.New("category has books assigned to it")
	ErrUnknownCategory = errors.New("book references an unknown category")
	ErrEmailTaken      = errors.New("email is already registered")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Categories

func (s *Store) Categories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("id").Find(&categories).Error
	return categories, err
}

func (s *Store) CategoryByID(id uint) (models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		return models.Category{}, ErrNotFound
	}
	return category, nil
}

func (s *Store) AddCategory(category models.Category) (models.Category, error) {
	if err := s.db.Create(&category).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *Store) UpdateCategory(id uint, fields map[string]interface{}) (models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		return models.Category{}, ErrNotFound
	}
	if err := s.db.Model(&category).Updates(fields).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// DeleteCategory refuses to remove a category while any book still
// references it. The store is the final authority on this check even when
// callers have queried for dependents beforehand.
func (s *Store) DeleteCategory(id uint) error {
	if _, err := s.CategoryByID(id); err != nil {
		return err
	}

	var dependents int64
	if err := s.db.Model(&models.Book{}).Where("category_id = ?", id).Count(&dependents).Error; err != nil {
		return err
	}
	if dependents > 0 {
		return ErrHasDependents
	}

	return s.db.Delete(&models.Category{}, "id = ?", id).Error
}

// Books

func (s *Store) Books() ([]models.Book, error) {
	var books []models.Book
	err := s.db.Order("id").Find(&books).Error
	return books, err
}

func (s *Store) BookByID(id uint) (models.Book, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", id).Error; err != nil {
		return models.Book{}, ErrNotFound
	}
	return book, nil
}

func (s *Store) BooksByCategory(categoryID uint) ([]models.Book, error) {
	var books []models.Book
	err := s.db.Where("category_id = ?", categoryID).Order("id").Find(&books).Error
	return books, err
}

func (s *Store) AvailableBooks() ([]models.Book, error) {
	var books []models.Book
	err := s.db.Where("available = ?", true).Order("id").Find(&books).Error
	return books, err
}

func (s *Store) AddBook(book models.Book) (models.Book, error) {
	if _, err := s.CategoryByID(book.CategoryID); err != nil {
		return models.Book{}, ErrUnknownCategory
	}
	if err := s.db.Create(&book).Error; err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func (s *Store) UpdateBook(id uint, fields map[string]interface{}) (models.Book, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", id).Error; err != nil {
		return models.Book{}, ErrNotFound
	}
	if categoryID, ok := fields["category_id"]; ok {
		id, ok := categoryID.(uint)
		if !ok {
			return models.Book{}, ErrUnknownCategory
		}
		if _, err := s.CategoryByID(id); err != nil {
			return models.Book{}, ErrUnknownCategory
		}
	}
	if err := s.db.Model(&book).Updates(fields).Error; err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func (s *Store) DeleteBook(id uint) error {
	result := s.db.Delete(&models.Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (s *Store) Users() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("id").Find(&users).Error
	return users, err
}

func (s *Store) UserByID(id uint) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *Store) UserByEmail(email string) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *Store) AddUser(user models.User) (models.User, error) {
	if _, err := s.UserByEmail(user.Email); err == nil {
		return models.User{}, ErrEmailTaken
	}
	if err := s.db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) UpdateUser(id uint, fields map[string]interface{}) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, ErrNotFound
	}
	if email, ok := fields["email"]; ok {
		existing, err := s.UserByEmail(fmt.Sprint(email))
		if err == nil && existing.ID != id {
			return models.User{}, ErrEmailTaken
		}
	}
	if err := s.db.Model(&user).Updates(fields).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Borrow records

func (s *Store) BorrowRecords() ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	err := s.db.Order("id").Find(&records).Error
	return records, err
}

func (s *Store) BorrowHistory(userID uint) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	err := s.db.Where("user_id = ?", userID).Order("id").Find(&records).Error
	return records, err
}

func (s *Store) BorrowByUid(recordUid string) (models.BorrowRecord, error) {
	var record models.BorrowRecord
	if err := s.db.First(&record, "record_uid = ?", recordUid).Error; err != nil {
		return models.BorrowRecord{}, ErrNotFound
	}
	return record, nil
}
