package services

import (
	"encoding/json"
	"fmt"

	"github.com/inkveil/inkveil/internal/client/models"
)

// Renderer turns decrypted entries into the byte payload disclosed to switch
// recipients. The encryption core treats the output as opaque; rendering
// happens strictly before payload encryption.
type Renderer interface {
	Render(entries []models.RenderableEntry) ([]byte, error)
}

// JSONRenderer emits the entries as an indented JSON array. It is the
// default payload shape; recipients need no special tooling to read it.
type JSONRenderer struct{}

func (JSONRenderer) Render(entries []models.RenderableEntry) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render entries: %w", err)
	}
	return data, nil
}
