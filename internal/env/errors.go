package env

import "errors"

// Error kinds surfaced by the environment. All are returned synchronously at
// the offending call and never retried internally; match with errors.Is.
var (
	// ErrInvalidAction reports a step action outside the discrete range.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidConfig reports a non-positive dt or export segment count.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEpisodeFinished reports a step on a terminal episode before Reset.
	ErrEpisodeFinished = errors.New("episode finished")
)
