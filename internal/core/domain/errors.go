package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
	ErrIndexBuild           = errors.New("index build failed")
	ErrRetrievalDegraded    = errors.New("retrieval degraded")
	ErrAlignmentMiss        = errors.New("phrase not found in user text")
	ErrPhraseSourceNotFound = errors.New("phrase source not found")
	ErrFeatureDisabled      = errors.New("feature disabled")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// NewError reports a semantic error that has no underlying cause.
func NewError(kind error, operation, detail string) error {
	if detail == "" {
		return fmt.Errorf("%s: %w", operation, kind)
	}
	return fmt.Errorf("%s: %w: %s", operation, kind, detail)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
