// Package ai ranks vendors with a remote language model.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrRankingTransport marks failures to reach the model or to get an answer from it.
	ErrRankingTransport = errors.New("ranking model call failed")
	// ErrInvalidResponse marks model answers that cannot be used as a ranking.
	ErrInvalidResponse = errors.New("invalid ranking model response")
)

// Generator sends a prompt to a language model and returns its text answer.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
