package domain

import dErrors "canopy/pkg/domain-errors"

// RelationshipKind labels a guardian-to-child authorization link.
type RelationshipKind string

const (
	KindParentChild   RelationshipKind = "parent-child"
	KindEducatorChild RelationshipKind = "educator-child"
)

// validKinds is the single source of truth for accepted kinds.
var validKinds = map[RelationshipKind]bool{
	KindParentChild:   true,
	KindEducatorChild: true,
}

// ParseRelationshipKind constructs a RelationshipKind from external input.
//
// Errors: CodeInvalidParameters when the value is empty or unsupported.
func ParseRelationshipKind(s string) (RelationshipKind, error) {
	k := RelationshipKind(s)
	if !validKinds[k] {
		return "", dErrors.New(dErrors.CodeInvalidParameters, "relationship kind must be parent-child or educator-child")
	}
	return k, nil
}

// IsValid checks the kind is one of the supported values.
func (k RelationshipKind) IsValid() bool {
	return validKinds[k]
}

func (k RelationshipKind) String() string {
	return string(k)
}
