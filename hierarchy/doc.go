// Package hierarchy answers class-hierarchy questions for the codec classifier.
//
// Index is built once from the full set of class declarations known at generation
// time and is immutable afterwards. Lazy resolves supertype closures on first use
// and memoizes them; it is safe for concurrent use.
package hierarchy
