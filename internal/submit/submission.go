// Package submit drives a single screenshot upload through
// Idle → Pending → Success/Failed, allowing one request in flight at a time.
package submit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"shotbox/internal/capture"
	"shotbox/internal/tags"
)

type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Request is what gets sent to the ingestion endpoint.
type Request struct {
	Candidate capture.Candidate
	Category  string
	Tags      []string
}

// Result mirrors the endpoint's success body.
type Result struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ID      string `json:"id"`
}

// Uploader performs the network call.
type Uploader interface {
	Upload(ctx context.Context, req Request) (Result, error)
}

// Snapshot is the observable state of a Submission.
type Snapshot struct {
	State  State
	Result *Result
	Err    error
}

// Message is the text to show the user for a failed snapshot: the
// validation message, or a generic failure for anything past validation.
func (s Snapshot) Message() string {
	if s.State != StateFailed || s.Err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(s.Err, &validation) {
		return validation.Message
	}
	return ErrUploadFailed.Error()
}

type Submission struct {
	uploader Uploader

	mu        sync.Mutex
	snapshot  Snapshot
	token     uint64
	closed    bool
	listeners []func(Snapshot)
}

func New(uploader Uploader) *Submission {
	return &Submission{uploader: uploader}
}

// OnChange registers fn to receive every state transition.
func (s *Submission) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Submission) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *Submission) State() State {
	return s.Snapshot().State
}

// Submit validates the request and performs the upload, blocking until the
// response arrives. While a submit is pending any other call returns
// ErrInFlight without reaching the network.
func (s *Submission) Submit(ctx context.Context, candidate capture.Candidate, category string, tagList []string) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}
	if s.snapshot.State == StatePending {
		s.mu.Unlock()
		return Result{}, ErrInFlight
	}

	if err := validate(candidate, category, tagList); err != nil {
		notify := s.transitionLocked(Snapshot{State: StateFailed, Err: err})
		s.mu.Unlock()
		notify()
		return Result{}, err
	}

	s.token++
	token := s.token
	notify := s.transitionLocked(Snapshot{State: StatePending})
	s.mu.Unlock()
	notify()

	result, err := s.uploader.Upload(ctx, Request{
		Candidate: candidate,
		Category:  category,
		Tags:      append([]string(nil), tagList...),
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.mu.Lock()
	notify = func() {}
	if !s.closed && token == s.token {
		if err != nil {
			notify = s.transitionLocked(Snapshot{State: StateFailed, Err: err})
		} else {
			res := result
			notify = s.transitionLocked(Snapshot{State: StateSuccess, Result: &res})
		}
	}
	s.mu.Unlock()
	notify()

	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Reset returns a finished submission to Idle. A pending upload is left
// running and its outcome is still applied.
func (s *Submission) Reset() {
	s.mu.Lock()
	if s.snapshot.State == StatePending || s.snapshot.State == StateIdle {
		s.mu.Unlock()
		return
	}
	notify := s.transitionLocked(Snapshot{State: StateIdle})
	s.mu.Unlock()
	notify()
}

// Close tears the submission down. A response that arrives afterwards is
// discarded and listeners are no longer called.
func (s *Submission) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()
}

// transitionLocked stores next and returns a func that notifies listeners
// once the caller has released the lock.
func (s *Submission) transitionLocked(next Snapshot) func() {
	s.snapshot = next
	listeners := slices.Clone(s.listeners)
	return func() {
		for _, fn := range listeners {
			fn(next)
		}
	}
}

func validate(candidate capture.Candidate, category string, tagList []string) error {
	switch {
	case candidate.IsEmpty():
		return &ValidationError{Message: "file required"}
	case category == "":
		return &ValidationError{Message: "category required"}
	case !tags.ValidCategory(category):
		return &ValidationError{Message: "category invalid"}
	case len(tagList) == 0:
		return &ValidationError{Message: "tags required"}
	case len(tagList) > tags.MaxTags:
		return &ValidationError{Message: fmt.Sprintf("at most %d tags allowed", tags.MaxTags)}
	}
	return nil
}
