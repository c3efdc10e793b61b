package capture

import (
	"sync"

	"github.com/segmentio/ksuid"
)

const previewScheme = "blob:shotbox/"

// Previews issues revocable display URLs for candidates, the way object
// URLs work in a browser.
type Previews struct {
	mu   sync.Mutex
	live map[string]Candidate
}

func NewPreviews() *Previews {
	return &Previews{live: make(map[string]Candidate)}
}

// PreviewHandle owns one preview URL until Release is called.
type PreviewHandle struct {
	url      string
	previews *Previews
	once     sync.Once
}

func (p *Previews) create(c Candidate) *PreviewHandle {
	url := previewScheme + ksuid.New().String()

	p.mu.Lock()
	p.live[url] = c
	p.mu.Unlock()

	return &PreviewHandle{url: url, previews: p}
}

func (p *Previews) revoke(url string) {
	p.mu.Lock()
	delete(p.live, url)
	p.mu.Unlock()
}

// Resolve returns the candidate behind a live preview URL.
func (p *Previews) Resolve(url string) (Candidate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.live[url]
	return c, ok
}

// Live reports how many preview URLs have not been released.
func (p *Previews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (h *PreviewHandle) URL() string {
	if h == nil {
		return ""
	}
	return h.url
}

// Release revokes the URL. Calling it more than once is harmless.
func (h *PreviewHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() { h.previews.revoke(h.url) })
}
