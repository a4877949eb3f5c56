package team

// Team is a roster unit. CoachID is the user coaching the team.
type Team struct {
	ID      int64
	Name    string
	CoachID *int64
}
