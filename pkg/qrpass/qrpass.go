// Package qrpass implements the QR identity exchange: a member's identity
// is serialized into a compact JSON payload rendered as a QR code, and the
// scanning operator decodes and validates it before confirming a loan.
package qrpass

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"church-library/pkg/models"
)

// MaxAge is how long a generated payload stays scannable.
const MaxAge = 24 * time.Hour

var (
	ErrMalformedPayload = errors.New("qr payload is malformed")
	ErrUnknownUser      = errors.New("qr payload references an unknown user")
	ErrExpiredPayload   = errors.New("qr payload has expired")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload is the wire format carried inside the QR code. It is
// self-contained: decodable without a store lookup, though membership is
// verified against the store afterwards.
type Payload struct {
	UserID             uint   `json:"userId"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	MainChurch         string `json:"mainChurch"`
	FatherOfConfession string `json:"fatherOfConfession"`
	Timestamp          int64  `json:"timestamp"` // epoch milliseconds
}

// Directory resolves a scanned user id against the registered members.
type Directory interface {
	UserByID(id uint) (models.User, error)
}

// Encode serializes a member's identity, stamped with the generation time.
func Encode(u models.User, now time.Time) ([]byte, error) {
	return json.Marshal(Payload{
		UserID:             u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		MainChurch:         u.MainChurch,
		FatherOfConfession: u.FatherOfConfession,
		Timestamp:          now.UnixMilli(),
	})
}

// Decode parses and validates a scanned payload. Checks run in order and
// short-circuit on the first failure, each with a distinct error so the
// scan flow can tell the operator what to do:
//
//  1. the payload parses and carries userId, name, email and timestamp
//  2. the userId belongs to a registered member
//  3. the payload is no older than MaxAge
func Decode(data []byte, dir Directory, now time.Time) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, ErrMalformedPayload
	}
	if p.UserID == 0 || p.Name == "" || p.Email == "" || p.Timestamp == 0 {
		return Payload{}, ErrMalformedPayload
	}

	if _, err := dir.UserByID(p.UserID); err != nil {
		return Payload{}, ErrUnknownUser
	}

	if now.UnixMilli()-p.Timestamp > MaxAge.Milliseconds() {
		return Payload{}, ErrExpiredPayload
	}

	return p, nil
}
