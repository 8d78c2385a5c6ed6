package model

import "time"

// Location is a campus point of interest owning an ordered set of
// quests. Coordinates place its node on the map canvas.
type Location struct {
	ID        int64
	Name      string
	Type      string
	X         float64
	Y         float64
	CreatedAt time.Time
}

// Quest is a single completable challenge at one location. Dependency,
// when set, is the identifier of the quest at the same location that
// must be completed first. Chains are built by each quest pointing at
// its immediate predecessor; a quest never has more than one.
type Quest struct {
	ID         int64
	LocationID int64
	Text       string
	Dependency *int64
}
