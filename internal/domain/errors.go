package domain

import "errors"

var (
	// ErrEmptyURL is returned when a media request has no URL
	ErrEmptyURL = errors.New("url is required")

	// ErrInvalidURL is returned when a media request URL is not an absolute http(s) URL
	ErrInvalidURL = errors.New("url must be an http(s) link")

	// ErrArtifactNotFound is returned when an artifact handle is unknown or already served
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactMissing is returned when a registered artifact is no longer on disk
	ErrArtifactMissing = errors.New("artifact file missing")

	// ErrCommandTimeout is returned by a CommandRunner when the process outlived its deadline
	ErrCommandTimeout = errors.New("command timed out")
)
