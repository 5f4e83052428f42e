package domain

// Optional fields carry explicit presence so "intentionally absent" stays
// distinct from a zero value. Modeled after database/sql's Null* types rather
// than nullable pointers.

// OptionalMilestoneID is an optional reference to another milestone, used for
// display nesting. It is unrelated to prerequisite edges.
type OptionalMilestoneID struct {
	ID    MilestoneID
	Valid bool
}

// SomeMilestoneID returns a present reference.
func SomeMilestoneID(id MilestoneID) OptionalMilestoneID {
	return OptionalMilestoneID{ID: id, Valid: true}
}

// OptionalEvidence is an optional evidence reference (typically a URL)
// attached to a completion record.
type OptionalEvidence struct {
	URL   string
	Valid bool
}

// SomeEvidence returns a present evidence reference.
func SomeEvidence(url string) OptionalEvidence {
	return OptionalEvidence{URL: url, Valid: true}
}
