// Package models defines the server-side records persisted by the repositories.
package models

import "time"

// User is a registered shopper.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Cart         Cart
	CreatedAt    time.Time
}
