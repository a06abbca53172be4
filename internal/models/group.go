package models

// Group represents a recurring poker group.
// Groups own players and sessions; each group is an independent unit of
// concurrency for settlement computation.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group, unique across the system.
	Name string

	// CreatorID is the user who created the group.
	CreatorID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Player represents a seat in a group. A player exists independently of
// user accounts; a user claims a player by joining the group.
type Player struct {
	// ID is the unique identifier for the player (UUID format).
	ID string

	// GroupID is the group this player belongs to.
	GroupID string

	// Name is the player's display name within the group.
	Name string

	// UserID is the account controlling this player, empty until claimed.
	UserID string

	// Joined reports whether a user has claimed this player.
	Joined bool
}
