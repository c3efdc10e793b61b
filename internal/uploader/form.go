// Package uploader binds a capture, its tags and category, and a submission
// into the single form a user fills in before uploading.
package uploader

import (
	"context"
	"sync"

	"shotbox/internal/capture"
	"shotbox/internal/submit"
	"shotbox/internal/tags"
)

type Form struct {
	capture    *capture.Capture
	submission *submit.Submission

	mu       sync.Mutex
	tags     *tags.Set
	category string
}

// NewForm wires c and sub together. A fresh selection returns the
// submission to Idle and clears the tags and category.
func NewForm(c *capture.Capture, sub *submit.Submission) *Form {
	f := &Form{
		capture:    c,
		submission: sub,
		tags:       tags.NewSet(),
	}
	c.OnSelect(func(capture.Candidate) {
		sub.Reset()
		f.mu.Lock()
		f.tags.Reset()
		f.category = ""
		f.mu.Unlock()
	})
	return f
}

func (f *Form) Capture() *capture.Capture { return f.capture }

func (f *Form) Submission() *submit.Submission { return f.submission }

func (f *Form) SetCategory(category string) {
	f.mu.Lock()
	f.category = category
	f.mu.Unlock()
}

func (f *Form) Category() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.category
}

func (f *Form) AddTag(raw string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags.Add(raw)
}

func (f *Form) RemoveTag(tag string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags.Remove(tag)
}

func (f *Form) Tags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags.Values()
}

// CanSubmit reports whether the submit action should be enabled.
func (f *Form) CanSubmit() bool {
	if _, ok := f.capture.Candidate(); !ok {
		return false
	}
	f.mu.Lock()
	ready := f.category != "" && f.tags.Len() > 0
	f.mu.Unlock()
	return ready && f.submission.State() != submit.StatePending
}

// Submit uploads the current selection. On success the preview is released
// and the capture emptied, unless a newer selection replaced it meanwhile.
func (f *Form) Submit(ctx context.Context) (submit.Result, error) {
	candidate, handle, _ := f.capture.Selection()

	f.mu.Lock()
	category := f.category
	tagList := f.tags.Values()
	f.mu.Unlock()

	result, err := f.submission.Submit(ctx, candidate, category, tagList)
	if err != nil {
		return submit.Result{}, err
	}
	f.capture.Release(handle)
	return result, nil
}
