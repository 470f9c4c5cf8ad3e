package models

import "time"

// User is a registered account. PinHash is never the plaintext PIN.
type User struct {
	ID        string
	Name      string
	Email     string
	PinHash   string
	Role      string
	CreatedAt time.Time
}
