package audit

import "time"

// EventType names an authentication event.
type EventType string

const (
	LoginSuccess    EventType = "login_success"
	LoginFailure    EventType = "login_failure"
	CSRFRejected    EventType = "csrf_rejected"
	Logout          EventType = "logout"
	RememberRestore EventType = "remember_restore"
)

// Event is one audit record. It never carries secrets: no passwords, raw tokens or session ids.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	IP         string    `json:"ip"`
	DeviceInfo string    `json:"device_info,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
