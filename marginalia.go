// Package marginalia is a single-document annotation viewer core: load a
// PDF, seed per-page notes from its text layer, edit them, and export the
// result.
//
// Basic usage:
//
//	s := marginalia.New()
//	if _, err := s.Load(ctx, data, document.MediaTypePDF); err != nil {
//	    // handle error
//	}
//	res := s.Extract(ctx)
//	s.ApplySeed(res)
//	if len(res.Warnings) > 0 {
//	    log.Println("Warnings:", pipeline.FormatWarnings(res.Warnings))
//	}
//	s.Notes().Set(2, "my note for page two")
//	fmt.Println(s.Export())
//
// Nothing is persisted: every entity belongs to the current load and is
// discarded wholesale on the next one. The lower-level document, pipeline,
// notes, view, and export packages are also available directly.
package marginalia

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := marginalia.Must(s.Load(ctx, data, document.MediaTypePDF))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
