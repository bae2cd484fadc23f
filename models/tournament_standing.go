package models

// GroupStanding is one row of a group table.
type GroupStanding struct {
	TeamID        int `json:"team_id"`
	Group         int `json:"group"`
	Played        int `json:"played"`
	Won           int `json:"won"`
	Lost          int `json:"lost"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
	Points        int `json:"points"`
}

func (s *GroupStanding) PointDifference() int {
	return s.PointsFor - s.PointsAgainst
}
