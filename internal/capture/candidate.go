// Package capture turns file-picker selections and clipboard pastes into a
// single current Candidate and owns the preview URL derived from it.
package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"shotbox/internal/media/sniffer"
)

// Candidate is the selected, not yet uploaded payload.
type Candidate struct {
	Name      string
	MediaType string
	Data      []byte
}

func (c Candidate) Size() int {
	return len(c.Data)
}

func (c Candidate) IsEmpty() bool {
	return len(c.Data) == 0
}

// FileFromPath reads a file the way a file picker would hand it over.
func FileFromPath(path string) (Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return Candidate{
		Name:      name,
		MediaType: sniffer.MediaTypeOf(name, data),
		Data:      data,
	}, nil
}
