// Package leaderboard computes ranked leaderboards from users and their activities.
package leaderboard

import (
	"sort"
	"time"

	"octofit/internal/models"
)

// Build returns one entry per user, ordered by total points descending and
// ranked 1..N. A user's total is their baseline TotalPoints plus the points of
// every activity referencing them; activities whose UserID matches no user are
// ignored. Users with equal totals keep their relative input order.
//
// Entry IDs are left empty; LastUpdated is set to now.
func Build(users []models.User, activities []models.Activity, now time.Time) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(users))
	if len(users) == 0 {
		return entries
	}

	earned := make(map[string]int, len(users))
	for _, u := range users {
		earned[u.ID] = 0
	}
	for _, a := range activities {
		if _, known := earned[a.UserID]; known {
			earned[a.UserID] += a.PointsEarned
		}
	}

	for _, u := range users {
		entries = append(entries, models.LeaderboardEntry{
			UserID:      u.ID,
			UserName:    u.Name,
			Team:        u.Team,
			TeamID:      u.TeamID,
			TotalPoints: u.TotalPoints + earned[u.ID],
			LastUpdated: now,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns the first n entries of a ranked slice. n <= 0 yields no entries.
func Top(entries []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	if n <= 0 {
		return []models.LeaderboardEntry{}
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}
