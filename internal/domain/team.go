package domain

import "fmt"

// ColorKey names a team color from the fixed palette
type ColorKey string

// Palette is the fixed, ordered set of team colors
var Palette = []ColorKey{
	"red", "blue", "green", "yellow", "purple", "orange", "pink", "teal",
}

// Valid reports whether c is a palette color
func (c ColorKey) Valid() bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// Team represents a team in the game
type Team struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Color ColorKey `json:"color"`
	Score int      `json:"score"`
}

// Roster is the ordered collection of teams. Ids are never reused
type Roster struct {
	Teams  []*Team `json:"teams"`
	nextID int
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{
		Teams:  make([]*Team, 0),
		nextID: 1,
	}
}

// Add appends a team with the next sequential id and the first unused color
// Once every palette color is taken the first palette color is reused
func (r *Roster) Add() *Team {
	team := &Team{
		ID:    r.nextID,
		Name:  fmt.Sprintf("Team %d", r.nextID),
		Color: r.freeColor(),
	}
	r.nextID++
	r.Teams = append(r.Teams, team)
	return team
}

// Remove deletes a team and returns the index it occupied
func (r *Roster) Remove(id int) (int, error) {
	idx := r.IndexOf(id)
	if idx < 0 {
		return -1, ErrTeamNotFound
	}
	r.Teams = append(r.Teams[:idx], r.Teams[idx+1:]...)
	return idx, nil
}

// Rename sets a team's name. Validation belongs to the presentation layer
func (r *Roster) Rename(id int, name string) error {
	team, err := r.Get(id)
	if err != nil {
		return err
	}
	team.Name = name
	return nil
}

// Recolor sets a team's color. Collisions with other teams are allowed
func (r *Roster) Recolor(id int, color ColorKey) error {
	if !color.Valid() {
		return ErrInvalidColor
	}
	team, err := r.Get(id)
	if err != nil {
		return err
	}
	team.Color = color
	return nil
}

// Get returns a team by ID
func (r *Roster) Get(id int) (*Team, error) {
	if idx := r.IndexOf(id); idx >= 0 {
		return r.Teams[idx], nil
	}
	return nil, ErrTeamNotFound
}

// IndexOf returns the roster position of a team, or -1
func (r *Roster) IndexOf(id int) int {
	for i, t := range r.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of teams
func (r *Roster) Len() int {
	return len(r.Teams)
}

// ResetScores zeroes every team's score
func (r *Roster) ResetScores() {
	for _, t := range r.Teams {
		t.Score = 0
	}
}

func (r *Roster) freeColor() ColorKey {
	used := make(map[ColorKey]bool, len(r.Teams))
	for _, t := range r.Teams {
		used[t.Color] = true
	}
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	return Palette[0]
}

// clone returns a deep copy for snapshots
func (r *Roster) clone() []Team {
	teams := make([]Team, len(r.Teams))
	for i, t := range r.Teams {
		teams[i] = *t
	}
	return teams
}
