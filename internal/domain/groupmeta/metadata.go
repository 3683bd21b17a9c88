// Package groupmeta defines the GroupMetadata cache entry shape shared by
// the GroupCache component and its SocketDriver-backed fetch path.
package groupmeta

import "time"

// ParticipantRole is the admin tier of a group participant.
type ParticipantRole int

const (
	RoleNone ParticipantRole = iota
	RoleAdmin
	RoleSuperAdmin
)

// Participant is one member of a group, canonicalized so it carries both a
// chat-addressable id and, when resolvable, a phone-addressable id.
type Participant struct {
	ID          string
	JID         string
	PhoneNumber string
	Admin       ParticipantRole
}

// Metadata is one cached group's metadata.
type Metadata struct {
	ID           string
	Subject      string
	Participants []Participant
	Announce     bool
	Restrict     bool
	FetchedAt    time.Time
	Stale        bool
}

// RateLimitedFallback builds the minimal never-raise fallback returned by
// GroupCache.Get when the SocketDriver is rate-limited and no cached entry
// exists.
func RateLimitedFallback(groupID string) *Metadata {
	return &Metadata{
		ID:           groupID,
		Subject:      "Unknown Group (Rate Limited)",
		Participants: []Participant{},
		Stale:        true,
	}
}
