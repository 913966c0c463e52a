package archery

import "errors"

var (
	// ErrMalformedScore is returned for an arrow symbol outside X, M, 1-10.
	// Malformed symbols are rejected outright; coercing them to zero would
	// corrupt cumulative ratings.
	ErrMalformedScore = errors.New("malformed score symbol")

	// ErrIncompleteRound is returned when finalizing a round that is missing
	// ends or arrows. The round stays in progress.
	ErrIncompleteRound = errors.New("round is incomplete")

	// ErrRoundFinalized is returned for any mutation of a round already in a
	// terminal state.
	ErrRoundFinalized = errors.New("round is in a terminal state")

	// ErrRoundNotFound is returned by stores for an unknown round ID.
	ErrRoundNotFound = errors.New("round not found")

	// ErrArcherNotFound is returned by stores for an unknown archer ID.
	ErrArcherNotFound = errors.New("archer not found")
)
