package engine

import "errors"

// Error taxonomy surfaced by the engine. Handlers map these onto HTTP
// statuses; everything else coming out of the engine is an internal failure.
var (
	// ErrValidation flags malformed or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound flags a referenced user, post or notification that does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized flags an actor without rights over the target record.
	ErrUnauthorized = errors.New("not authorized")
	// ErrConflict flags a request that would violate an invariant, such as a
	// self-follow.
	ErrConflict = errors.New("conflicting request")
	// ErrStoreUnavailable flags a persistence failure that survived a retry.
	// The engine does not retry further; callers apply their own policy.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEmptyFollowing distinguishes "you follow no one" from an empty
	// following feed.
	ErrEmptyFollowing = errors.New("not following anyone")
)
