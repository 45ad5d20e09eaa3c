// Package processor contains the core card logic. It turns card lines into
// notes of the collection, renders previews through a transient note that
// is always removed again, exports every line as one self-contained HTML
// document and loads a deck back into card lines. This package is the
// coordinator between the tokenizer, the mapper, the collection and the
// render and media pipelines.
package processor
