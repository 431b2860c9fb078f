package engine

import "fmt"

// OpenError reports a document that could not be opened (missing or corrupt
// file). It aborts tab creation; no session is created for the path.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("engine: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// RenderError reports a failed page rasterization. Render failures are
// logged at the worker boundary and never fatal to a session.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("engine: rasterize page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// LoadError reports a page that could not be loaded.
type LoadError struct {
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("engine: load page %d: %v", e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
