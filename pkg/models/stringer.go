package models

// String methods for custom string types, used by toon serialization.

func (k SpaceKind) String() string         { return string(k) }
func (v ViolationSeverity) String() string { return string(v) }
