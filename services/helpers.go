package services

import (
	"fmt"
	"strings"

	"github.com/sundayleague/match-system/models"
)

// isCaptainOf is the single capability check for captain-only actions.
// Captaincy is derived from the team row, not a separate permission object.
func isCaptainOf(playerID int, team *models.Team) bool {
	return team != nil && team.CaptainID == playerID
}

// parseScore parses a submitted "X-Y" score string. Both parts must be plain
// non-negative decimal integers; signs, spaces and empty parts are rejected.
func parseScore(s string) (int, int, error) {
	left, right, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, ErrInvalidScore
	}
	goalsA, err := parseGoals(left)
	if err != nil {
		return 0, 0, err
	}
	goalsB, err := parseGoals(right)
	if err != nil {
		return 0, 0, err
	}
	return goalsA, goalsB, nil
}

func parseGoals(s string) (int, error) {
	if s == "" || len(s) > 3 {
		return 0, ErrInvalidScore
	}
	goals := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidScore
		}
		goals = goals*10 + int(r-'0')
	}
	return goals, nil
}

// formatScore renders the canonical form used for storage and comparison, so
// that "03-1" and "3-1" agree.
func formatScore(goalsA, goalsB int) string {
	return fmt.Sprintf("%d-%d", goalsA, goalsB)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(s string) *string {
	return &s
}
