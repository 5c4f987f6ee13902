package models

// String methods for the category types. toon serialization renders
// named string types through fmt.Stringer.

// CommitCategory
func (c CommitCategory) String() string { return string(c) }

// FileCategory
func (c FileCategory) String() string { return string(c) }
