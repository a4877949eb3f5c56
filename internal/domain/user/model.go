package user

import "strings"

// User is an account that can receive notifications.
type User struct {
	ID        int64
	Name      string
	Email     string
	PushToken string
}

func (u User) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}

func (u User) HasPushToken() bool {
	return strings.TrimSpace(u.PushToken) != ""
}

// Principal is the authenticated caller.
type Principal struct {
	UserID int64
	Email  string
}
