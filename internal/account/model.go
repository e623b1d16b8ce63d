package account

import "time"

// Account is a durable user identity, created only after OTP confirmation.
type Account struct {
	ID        string
	Name      string
	Email     string
	Birthday  time.Time
	CreatedAt time.Time
	LastLogin time.Time
}
