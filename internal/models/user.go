package models

import "time"

// Role determines what a user may administer.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// User is created or refreshed on every successful authentication, keyed by
// the identity provider's subject id.
type User struct {
	AuthID        string `boltholdKey:"AuthID" json:"auth_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Role          Role   `json:"role"`
	Locale        string `json:"locale,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interaction is a weighted User->Movie edge. Weight accumulates from views
// and bookmarks and never goes below zero; Bookmarked marks explicit
// watchlist membership on top of the weight.
type Interaction struct {
	ID         uint64 `boltholdKey:"ID"`
	UserID     string `boltholdIndex:"UserID"`
	MovieID    int64  `boltholdIndex:"MovieID"`
	Weight     float64
	Bookmarked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Per-action weight contributions. A bookmark is a stronger signal than a
// view, so removing one decrements the weight by the same amount (floored at
// zero in the store).
const (
	ViewWeight     = 1.0
	BookmarkWeight = 3.0
)

// SimilarUser is a neighbor in the interaction graph, ranked by how many
// distinct movies both users touched.
type SimilarUser struct {
	UserID      string
	SharedCount int
}
