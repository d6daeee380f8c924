// Package common defines shared sentinel errors used across the card
// generation pipeline. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Registry errors.
	ErrTemplateNotFound = errors.New("template not found")

	// Generation errors. ErrGeneration wraps any remote API or network
	// failure; ErrUnexpectedOutput marks a prediction output shape the
	// client cannot resolve into image bytes.
	ErrGeneration       = errors.New("image generation failed")
	ErrUnexpectedOutput = errors.New("unexpected prediction output")

	// Storage errors. ErrStorageUnavailable covers missing credentials as
	// well as failed calls; the pipeline degrades instead of aborting.
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrCardNotFound       = errors.New("card not found")
)
