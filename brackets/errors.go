// Package brackets runs the tournament structure: group assignment, group
// tables and the knockout tree.
package brackets

import "errors"

var (
	ErrInvalidGroupCount = errors.New("number of groups must be between 1 and the number of teams")
	ErrInvalidRounds     = errors.New("knockout rounds out of range")
	ErrNoSets            = errors.New("at least one set is required")
	ErrTiedSet           = errors.New("a set cannot end in a tie")
	ErrNegativeScore     = errors.New("set scores cannot be negative")
	ErrNoWinner          = errors.New("sets are split evenly, no winner")
	ErrSameTeam          = errors.New("a team cannot play itself")
	ErrUnknownTeam       = errors.New("team is not part of the group stage")
	ErrDifferentGroups   = errors.New("teams are in different groups")
	ErrMatchNotFound     = errors.New("knockout match not found")
	ErrByeMatch          = errors.New("knockout match is a bye")
	ErrMatchNotReady     = errors.New("knockout match is still waiting for a team")
	ErrMatchDecided      = errors.New("knockout match already has a winner")
	ErrWinnerNotInMatch  = errors.New("winner does not play in this knockout match")
)
