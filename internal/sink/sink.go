// Package sink delivers an assembled context blob to its destination.
package sink

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// Sink receives the final assembled text.
type Sink interface {
	Write(content string) error
}

// Clipboard writes to the system clipboard.
type Clipboard struct{}

func (Clipboard) Write(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// Writer writes to any io.Writer, typically stdout or a file.
type Writer struct {
	W io.Writer
}

func (w Writer) Write(content string) error {
	_, err := io.WriteString(w.W, content)
	return err
}
