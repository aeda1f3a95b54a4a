package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Loan statuses. A record stays ACTIVE until an explicit return settles it.
const (
	StatusActive   = "ACTIVE"
	StatusReturned = "RETURNED"
	StatusOverdue  = "OVERDUE"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Color       string    `gorm:"size:20" json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	CategoryID  uint      `gorm:"not null;index" json:"category"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:80;not null" json:"name"`
	Age                int       `gorm:"not null;check:age > 0" json:"age"`
	Email              string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	Phone              string    `gorm:"size:20" json:"phone"`
	MainChurch         string    `json:"mainChurch"`
	FatherOfConfession string    `json:"fatherOfConfession"`
	Role               string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"-"`
}

type BorrowRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RecordUid  string    `gorm:"type:uuid;uniqueIndex;not null" json:"recordUid"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	BookID     uint      `gorm:"not null;index" json:"bookId"`
	BorrowDate time.Time `json:"borrowDate"`
	ReturnDate time.Time `json:"returnDate"`
	Price      float64   `gorm:"not null" json:"price"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
