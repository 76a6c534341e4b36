package extract

import (
	"context"
	"fmt"
)

// Capability tags what an engine can do. The cascade only offers an engine
// work it is tagged for.
type Capability uint8

const (
	// CapText means the engine can produce raw text for a whole document.
	CapText Capability = 1 << iota
	// CapTable means the engine can produce cell geometry for one page.
	CapTable
	// CapDirect marks a text-layer reader: cheap and exact on born-digital
	// PDFs, but subject to the plausibility threshold on scanned ones.
	CapDirect
)

// Engine is one extraction backend in the cascade.
type Engine interface {
	Name() string
	Capabilities() Capability
}

// TextEngine extracts the full text of a document.
type TextEngine interface {
	Engine
	ExtractText(ctx context.Context, path string) (string, error)
}

// TableEngine extracts a 2-D grid of cell strings from one page (0-indexed).
// An engine that finds no table returns an empty grid and no error.
type TableEngine interface {
	Engine
	ExtractTable(ctx context.Context, path string, page int) ([][]string, error)
}

// EngineError wraps a single backend's failure so cascade logs and joined
// errors identify which stage broke.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
