package domain

// Difficulty grades a content item
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ContentItem is an immutable catalog entry: a concept teams try to identify
type ContentItem struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Example     string     `json:"example" yaml:"example"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
}

// HasAnyTag reports whether the item carries at least one of the given tags
func (c ContentItem) HasAnyTag(tags map[string]bool) bool {
	for _, t := range c.Tags {
		if tags[t] {
			return true
		}
	}
	return false
}

// KeyItem explains a ContentItem once its lock is solved. Informational only
type KeyItem struct {
	ID              int    `json:"id" yaml:"id"`
	LinkedContentID int    `json:"linkedContentId" yaml:"linkedContentId"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	Technique       string `json:"technique" yaml:"technique"`
}
