package model

// Genre is a row in the `genres` table.  Genres are linked to movies
// through the movie_genres join table and are created on demand when
// a new movie arrives with an unseen genre name.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// AgeRate is a row in the `age_rates` table (e.g. "0+", "16+").
type AgeRate struct {
	ID   uint64 // age_rates.id
	Name string // age_rates.name
}

// SessionType is a row in the `session_types` table describing the
// screening format (2D, 3D, IMAX, ...).
type SessionType struct {
	ID   uint64 // session_types.id
	Name string // session_types.name
}
