package domain

import "errors"

var (
	ErrCommunityNotFound   = errors.New("community not found")
	ErrAccessGated         = errors.New("trial expired and no active subscription")
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrDuplicateContent    = errors.New("content already shared in this community")
	ErrAlreadyVoted        = errors.New("user already voted on this interaction")
	ErrInvalidScore        = errors.New("score must be between 1 and 5")
	ErrVoteRateLimited     = errors.New("vote rate limit exceeded")
	ErrNegativeDelta       = errors.New("stat deltas must be non-negative")
	ErrStatRowNotFound     = errors.New("user stat row not found")
)
