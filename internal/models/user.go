package models

import "time"

// User is the single locally-authenticated identity. Exactly one row is
// ever stored; the username feeds the identity header on every outbound
// request.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	CreatedAt   time.Time
}
