package pydups

import (
	"github.com/jward/pydups/internal/dupes"
	"github.com/jward/pydups/internal/store"
	"github.com/jward/pydups/internal/syntax"
)

// Public type aliases for internal types used in the Engine and Report API.
// These are Go type aliases (=), identical to the internal types at compile
// time, so no conversion is needed.

type Location = dupes.Location
type Group = dupes.Group
type Occurrence = dupes.Occurrence
type Fingerprint = dupes.Fingerprint
type ParseError = syntax.ParseError

type Store = store.Store
type Run = store.Run
type SavedGroup = store.Group
