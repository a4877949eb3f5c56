package athlete

import "strings"

// Athlete is a rostered person. TeamID is the home team; UserID links the
// athlete to a login account when one exists.
type Athlete struct {
	ID        int64
	TeamID    *int64
	UserID    *int64
	FirstName string
	LastName  string
}

func (a Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
