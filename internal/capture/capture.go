package capture

import (
	"slices"
	"sync"

	"shotbox/internal/media/sniffer"
)

// Capture holds the current candidate and its preview. It is Empty until a
// selection arrives; every new selection replaces the previous one and
// releases its preview first.
type Capture struct {
	mu        sync.Mutex
	previews  *Previews
	candidate *Candidate
	preview   *PreviewHandle
	onSelect  []func(Candidate)
	unmount   func()
	mountGen  int
}

func New(previews *Previews) *Capture {
	if previews == nil {
		previews = NewPreviews()
	}
	return &Capture{previews: previews}
}

// OnSelect registers fn to run after each successful selection.
func (c *Capture) OnSelect(fn func(Candidate)) {
	c.mu.Lock()
	c.onSelect = append(c.onSelect, fn)
	c.mu.Unlock()
}

// SelectFromPicker makes file the current candidate. Empty files are ignored.
func (c *Capture) SelectFromPicker(file Candidate) bool {
	if file.IsEmpty() {
		return false
	}

	c.mu.Lock()
	c.preview.Release()
	c.candidate = &file
	c.preview = c.previews.create(file)
	listeners := slices.Clone(c.onSelect)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(file)
	}
	return true
}

// SelectFromPaste selects the first image item. Pastes without an image are
// ignored without error.
func (c *Capture) SelectFromPaste(items []ClipboardItem) bool {
	for _, item := range items {
		if !sniffer.IsImage(item.Type) || item.File == nil || item.File.IsEmpty() {
			continue
		}
		file := *item.File
		if file.MediaType == "" {
			file.MediaType = item.Type
		}
		return c.SelectFromPicker(file)
	}
	return false
}

// Clear releases the preview and drops the candidate.
func (c *Capture) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Release clears the capture only if handle is still the current preview.
// It reports whether anything was cleared.
func (c *Capture) Release(handle *PreviewHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if handle == nil || handle != c.preview {
		return false
	}
	c.clearLocked()
	return true
}

func (c *Capture) clearLocked() {
	c.preview.Release()
	c.preview = nil
	c.candidate = nil
}

func (c *Capture) Candidate() (Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.candidate == nil {
		return Candidate{}, false
	}
	return *c.candidate, true
}

// Selection returns the candidate together with the preview that owns it.
func (c *Capture) Selection() (Candidate, *PreviewHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.candidate == nil {
		return Candidate{}, nil, false
	}
	return *c.candidate, c.preview, true
}

func (c *Capture) Preview() *PreviewHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Mount subscribes the capture to doc's paste events. Mounting again
// replaces the earlier subscription, so at most one listener is installed.
// The returned function unmounts.
func (c *Capture) Mount(doc *Document) (unmount func()) {
	unsubscribe := doc.OnPaste(func(items []ClipboardItem) {
		c.SelectFromPaste(items)
	})

	c.mu.Lock()
	c.mountGen++
	gen := c.mountGen
	previous := c.unmount
	c.unmount = unsubscribe
	c.mu.Unlock()

	if previous != nil {
		previous()
	}

	return func() {
		c.mu.Lock()
		if c.mountGen == gen {
			c.unmount = nil
		}
		c.mu.Unlock()
		unsubscribe()
	}
}
