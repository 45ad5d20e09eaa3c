// Package render builds the HTML pages shown for previews and exports:
// back-content extraction, per-card id uniquification and the page
// layouts themselves.
package render
