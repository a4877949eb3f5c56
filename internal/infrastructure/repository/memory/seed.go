package memory

import (
	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/team"
	"github.com/riskibarqy/team-events/internal/domain/user"
)

const (
	SeedCoachUserID  int64 = 1
	SeedParentUserID int64 = 2
	SeedAthleteUser  int64 = 3

	SeedTeamVarsity int64 = 5
	SeedTeamJunior  int64 = 7
)

func SeedUsers() []user.User {
	return []user.User{
		{ID: SeedCoachUserID, Name: "Dana Coach", Email: "coach@example.com", PushToken: "push-coach"},
		{ID: SeedParentUserID, Name: "Pat Parent", Email: "parent@example.com"},
		{ID: SeedAthleteUser, Name: "Riley Runner", PushToken: "push-riley"},
	}
}

func SeedTeams() []team.Team {
	coach := SeedCoachUserID
	return []team.Team{
		{ID: SeedTeamVarsity, Name: "Varsity", CoachID: &coach},
		{ID: SeedTeamJunior, Name: "Junior Varsity"},
	}
}

func SeedAthletes() []athlete.Athlete {
	varsity, junior := SeedTeamVarsity, SeedTeamJunior
	riley := SeedAthleteUser
	return []athlete.Athlete{
		{ID: 40, TeamID: &varsity, FirstName: "Sam", LastName: "Stone"},
		{ID: 41, TeamID: &varsity, UserID: &riley, FirstName: "Riley", LastName: "Runner"},
		{ID: 42, TeamID: &junior, FirstName: "Alex", LastName: "Kim"},
		{ID: 43, FirstName: "Jo", LastName: "Free"},
	}
}
