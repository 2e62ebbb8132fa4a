package exam

import "errors"

// Core exam errors. Handlers map these onto response.ErrCode values.
var (
	// ErrInvalidConfiguration means a session was created with no questions,
	// a non-positive time limit, or a question whose correct option does not
	// point into its option list.
	ErrInvalidConfiguration = errors.New("invalid exam configuration")

	// ErrInvalidState means a mutation was attempted on a session that is no
	// longer in progress. Expected under the single-stream model (a stray UI
	// event arriving after submission) and recovered locally.
	ErrInvalidState = errors.New("session is not in progress")

	// ErrIndexOutOfRange means a navigation target outside the question list.
	// A caller bug, surfaced rather than clamped.
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrInvalidInput means scoring was attempted on an empty question set.
	ErrInvalidInput = errors.New("nothing to score")
)
