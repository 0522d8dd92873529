package model

import "time"

// Movie represents a film in the repertoire as stored in the `movies`
// table.  The CreatedAt/ExpiresAt pair is the visible window of the
// movie: it is widened automatically whenever sessions are scheduled
// outside the current bounds, so listings never hide a movie that
// still has upcoming sessions.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – movie title.
//  Description – optional synopsis.
//  Duration    – runtime in minutes; drives scheduling conflict checks.
//  Year        – release year.
//  RateID      – foreign key into the age_rates table.
//  PosterURL   – optional poster image URL.
//  CreatedAt   – start of the visible window (nil until first session).
//  ExpiresAt   – end of the visible window (nil until first session).
type Movie struct {
	ID          uint64     // movies.id
	Name        string     // movies.name
	Description *string    // movies.description (nullable)
	Duration    uint32     // movies.duration (minutes)
	Year        uint16     // movies.year
	RateID      uint64     // movies.rate_id (references age_rates.id)
	PosterURL   *string    // movies.poster_url (nullable)
	CreatedAt   *time.Time // movies.created_at (nullable)
	ExpiresAt   *time.Time // movies.expires_at (nullable)
}

// Actor is a row in the `actors` table, linked to movies through
// the movie_actors join table.
type Actor struct {
	ID   uint64 // actors.id
	Name string // actors.name
}

// Director is a row in the `directors` table, linked to movies
// through the movie_directors join table.
type Director struct {
	ID   uint64 // directors.id
	Name string // directors.name
}

// Studio is a row in the `studios` table, linked to movies through
// the movie_studios join table.
type Studio struct {
	ID   uint64 // studios.id
	Name string // studios.name
}
