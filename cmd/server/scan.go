package main

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"church-library/pkg/qrpass"
)

// getOwnQRCode returns the caller's identity payload, ready to be rendered
// as a QR code by the client.
func getOwnQRCode(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}

	payload, err := qrpass.Encode(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// scanQRCode validates a scanned payload and, when it checks out, returns
// the member's identity together with the books that can be borrowed right
// now.
func scanQRCode(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	payload, err := qrpass.Decode(body, entities, time.Now())
	switch {
	case errors.Is(err, qrpass.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "qr payload is malformed"})
		return
	case errors.Is(err, qrpass.ErrUnknownUser):
		c.JSON(http.StatusNotFound, gin.H{"error": "member is not registered"})
		return
	case errors.Is(err, qrpass.ErrExpiredPayload):
		c.JSON(http.StatusGone, gin.H{"error": "qr code has expired, ask the member to regenerate it"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	books, err := entities.AvailableBooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":                 payload.UserID,
			"name":               payload.Name,
			"email":              payload.Email,
			"phone":              payload.Phone,
			"mainChurch":         payload.MainChurch,
			"fatherOfConfession": payload.FatherOfConfession,
		},
		"availableBooks": books,
	})
}
