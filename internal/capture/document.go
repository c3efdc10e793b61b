package capture

import (
	"sync"

	"shotbox/internal/media/sniffer"
)

// ClipboardItem is one entry of a paste event.
type ClipboardItem struct {
	Type string
	File *Candidate
}

// ClipboardItemFromBytes wraps raw pasted bytes, typing them by content.
func ClipboardItemFromBytes(data []byte) ClipboardItem {
	mediaType := "application/octet-stream"
	name := "clipboard"
	if result, err := sniffer.DetectHead(data); err == nil {
		mediaType = result.MIME
		name = "image." + string(result.Type)
	}
	return ClipboardItem{
		Type: mediaType,
		File: &Candidate{Name: name, MediaType: mediaType, Data: data},
	}
}

// Document is the process-wide source of paste events.
type Document struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func([]ClipboardItem)
}

func NewDocument() *Document {
	return &Document{handlers: make(map[int]func([]ClipboardItem))}
}

// OnPaste subscribes fn and returns the function that removes it.
func (d *Document) OnPaste(fn func([]ClipboardItem)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.next
	d.next++
	d.handlers[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.handlers, id)
			d.mu.Unlock()
		})
	}
}

// Paste delivers items to every subscriber.
func (d *Document) Paste(items []ClipboardItem) {
	d.mu.Lock()
	handlers := make([]func([]ClipboardItem), 0, len(d.handlers))
	for _, fn := range d.handlers {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()

	for _, fn := range handlers {
		fn(items)
	}
}

func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}
