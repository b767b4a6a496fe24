package domain

import "errors"

// ErrNotStarted is returned when a time-derived property (elapsed, remaining, start instant)
// is queried on a state that has not been started yet.
var ErrNotStarted = errors.New("state not started")

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownKind is returned when a plan references a state kind that has no factory.
var ErrUnknownKind = errors.New("unknown state kind")

// ErrInvalidPlan is returned when a plan definition fails validation.
var ErrInvalidPlan = errors.New("invalid plan")

// ErrStateNotFound is returned when a named state cannot be found in a tree.
var ErrStateNotFound = errors.New("state not found")

// ErrNotSkippable is returned when Skip targets a state that is not a series.
var ErrNotSkippable = errors.New("state is not a series")

// ErrNoActiveState is returned when an operation needs a running state and there is none.
var ErrNoActiveState = errors.New("no active state")
