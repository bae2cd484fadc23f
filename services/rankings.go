package services

import (
	"sort"

	"github.com/Dosada05/club-ladder/models"
)

// BuildRankings orders the roster for display. With ratings the order is
// rating desc; otherwise games won desc, then win rate desc. Name breaks
// remaining ties.
func BuildRankings(members []*models.Member, useRating bool) []models.RankingEntry {
	sorted := append([]*models.Member(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if useRating {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.Name < b.Name
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		if a.WinRate() != b.WinRate() {
			return a.WinRate() > b.WinRate()
		}
		return a.Name < b.Name
	})

	entries := make([]models.RankingEntry, 0, len(sorted))
	for i, m := range sorted {
		entry := models.RankingEntry{
			Rank:        i + 1,
			Name:        m.Name,
			GamesPlayed: m.GamesPlayed,
			GamesWon:    m.GamesWon,
			WinRate:     m.WinRate(),
		}
		if useRating {
			rating := m.Rating
			entry.Rating = &rating
		}
		entries = append(entries, entry)
	}
	return entries
}
