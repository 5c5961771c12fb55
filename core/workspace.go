package core

import "errors"

// ErrNotFound is returned by Workspace.Read when no text exists at the
// requested location. Implementations wrap it so callers can test with
// errors.Is.
var ErrNotFound = errors.New("workspace: location not found")

// Workspace is the storage boundary agents persist through. Locations are
// slash-separated paths of the form "{output_root}/{name}-{id}/...". The
// delegation protocol's result resolution depends only on Exists and Read;
// the built-in tools additionally use Write, Append and List.
//
// Implementations must be safe for concurrent use: agents running in
// parallel write to disjoint locations, but share the one Workspace value.
type Workspace interface {
	// Read returns the text stored at location, or an error wrapping
	// ErrNotFound when nothing is stored there.
	Read(location string) (string, error)

	// Write stores text at location, creating parent locations as needed and
	// replacing any previous content.
	Write(location, text string) error

	// Append appends text to location, creating it when absent.
	Append(location, text string) error

	// Exists reports whether any text is stored at location.
	Exists(location string) bool

	// List returns the entries directly under the given location.
	List(location string) ([]string, error)
}
