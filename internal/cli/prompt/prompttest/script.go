// Package prompttest provides a Prompter that replays canned answers.
package prompttest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// Script replays answers in order. Running out of answers is reported as
// cancellation, the same way a closed terminal is.
type Script struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

// NewScript creates a Script. Select answers are the option text or its
// 1-based number.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

// Asked returns the labels prompted so far.
func (s *Script) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

// Remaining returns the number of unused answers.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Script) Input(ctx context.Context, label string) (string, error) {
	return s.next(ctx, label)
}

func (s *Script) Masked(ctx context.Context, label string) (string, error) {
	return s.next(ctx, label)
}

func (s *Script) Select(ctx context.Context, label string, options []string) (int, error) {
	answer, err := s.next(ctx, label)
	if err != nil {
		return -1, err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1, nil
	}
	for i, opt := range options {
		if strings.EqualFold(answer, opt) {
			return i, nil
		}
	}
	return -1, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("scripted answer %q matches no option", answer))
}

func (s *Script) next(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.ErrCancelled.WithCause(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, label)
	if len(s.answers) == 0 {
		return "", domain.ErrCancelled.WithDetails("no answer for " + label)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}
