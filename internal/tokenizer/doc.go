// Package tokenizer splits lines of authored card text into field parts.
// It owns the set of toggle-able delimiters and the quote-aware splitter
// shared by the preview, add, export and grid paths.
package tokenizer
