// Package model defines the core domain types for the event platform:
// entities, lifecycle state machines, and the request/response payloads
// exchanged over HTTP.
package model

import "time"

// User is a registered platform user.
type User struct {
	ID    int64
	Email string
	Name  string
}

// Category is a named grouping users attach to events. Names are unique.
type Category struct {
	ID   int64
	Name string
}

// Comment is a user's remark on an event.
type Comment struct {
	ID       int64
	Text     string
	EventID  int64
	AuthorID int64
	Created  time.Time
}

// Compilation is an administrator-curated grouping of events.
type Compilation struct {
	ID       int64
	Pinned   bool
	Title    string
	EventIDs []int64
}
