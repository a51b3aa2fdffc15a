// Package ingestion defines the document record fed into an index build.
package ingestion

import (
	"path/filepath"
	"strings"
)

// UnreadableTitle is the title given to documents whose content could not
// be read or parsed.
const UnreadableTitle = "[Unreadable File]"

// Document is one unit of ingestion. ID must be unique within a build.
type Document struct {
	ID string
	// Title is an optional stored title; a title found in the content
	// takes precedence.
	Title string
	// Name is used to pick a content parser by extension. Defaults to ID.
	Name string
	Raw  []byte
	// ReadErr records a failure to load Raw. The document is still indexed,
	// with a placeholder title and no text.
	ReadErr error
}

// Ext returns the lowercased extension of the document name.
func (d Document) Ext() string {
	name := d.Name
	if name == "" {
		name = d.ID
	}
	return strings.ToLower(filepath.Ext(name))
}
