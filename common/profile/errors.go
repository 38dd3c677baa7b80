package profile

import "errors"

var (
	// ErrPatternMismatch indicates a path expected to end in -<N>-link does not.
	ErrPatternMismatch = errors.New("path does not match the generation link pattern")
	// ErrMalformedManifest indicates a generation has a boot.json that could not be parsed.
	ErrMalformedManifest = errors.New("generation has a malformed boot.json")
	// ErrGenerationNotFound indicates a generation id is not part of the profile.
	ErrGenerationNotFound = errors.New("generation not found in profile")
)
