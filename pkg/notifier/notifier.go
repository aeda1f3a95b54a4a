// Package notifier delivers borrow confirmations to the member-facing
// channel. Delivery is fire-and-forget: a failed notification never rolls
// back or fails the loan that triggered it.
package notifier

import "log"

// Notifier is invoked exactly once per successful borrow transaction.
type Notifier interface {
	SendBorrowConfirmation(userName, bookName, returnDateDisplay string)
}

// LogNotifier is the fallback dispatcher used when no message broker is
// configured.
type LogNotifier struct{}

func (LogNotifier) SendBorrowConfirmation(userName, bookName, returnDateDisplay string) {
	log.Printf("Borrow confirmed: %q lent to %s, due back %s", bookName, userName, returnDateDisplay)
}
