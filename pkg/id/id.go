// Package id issues opaque identifiers for new entities.
package id

import "github.com/google/uuid"

// Generator returns an identifier that has not been issued before.
type Generator func() string

// New returns a random version 4 UUID in its canonical string form.
func New() string {
	return uuid.NewString()
}
