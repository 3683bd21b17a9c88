package session

import "context"

// Repository defines the interface for session persistence operations.
type Repository interface {
	Create(ctx context.Context, sess *Session) error
	GetByID(ctx context.Context, id SessionID) (*Session, error)
	GetByUserID(ctx context.Context, userID string) (*Session, error)
	List(ctx context.Context, limit, offset int) ([]*Session, int, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id SessionID) error
	UpdateStatus(ctx context.Context, id SessionID, status Status) error
	GetActiveCount(ctx context.Context) (int, error)
	GetByStatus(ctx context.Context, status Status, limit, offset int) ([]*Session, int, error)
	Exists(ctx context.Context, id SessionID) (bool, error)

	// ListEligibleForReconnect returns sessions that should be reconnected
	// on process startup: previously connected (had a JID) and not
	// voluntarily disconnected.
	ListEligibleForReconnect(ctx context.Context) ([]*Session, error)
}

// ListFilter represents filters for listing sessions.
type ListFilter struct {
	Status *Status
	Source *Source
	Search string
}

// ListOptions represents options for listing sessions.
type ListOptions struct {
	Limit  int
	Offset int
	Sort   string
	Order  string
}

// RepositoryWithFilters extends Repository with advanced filtering.
type RepositoryWithFilters interface {
	Repository

	ListWithFilter(ctx context.Context, filter ListFilter, options ListOptions) ([]*Session, int, error)
	CountWithFilter(ctx context.Context, filter ListFilter) (int, error)
}
