package domain

import "time"

// DashboardUserID is the id of the single dashboard account.
const DashboardUserID int64 = 1

// User is the dashboard account.
type User struct {
	ID          int64
	LastLoginAt *time.Time // nil until the first successful login
	CreatedAt   time.Time
}
