// Package state implements the StateStore and PathResolver of spec §4.1:
// addressing a model.State by dotted path, and cloning it for diffing.
//
// Per the spec's design notes (§9), paths are represented as a tagged
// variant rather than closures or reflection, so every operation is an
// exhaustive match instead of a family of runtime path-typo bugs.
package state

import (
	"strings"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
)

// Kind discriminates the three path shapes of spec §4.1.
type Kind int

const (
	KindWorldVar Kind = iota
	KindWorldTags
	KindWorldFact
	KindWorldIntensity
	KindCharacterField
	KindCharacterVar
	KindRelationshipField
	KindRelationshipVar
)

// Path is the parsed, exhaustively-matchable form of a dotted path
// string such as "world.vars.tension" or "relationships.a|b.trust".
type Path struct {
	Kind Kind
	Raw  string

	VarKey string // KindWorldVar, KindCharacterVar, KindRelationshipVar

	FactCategory string // KindWorldFact
	FactKey      string // KindWorldFact

	CharacterID string // KindCharacterField, KindCharacterVar
	Field       string // KindCharacterField, KindRelationshipField ("mood","status","traits",...)

	RelA, RelB string // KindRelationshipField, KindRelationshipVar
}

// Parse parses a dotted path string into its tagged-variant form.
// An absent value is a lookup-time concern, not a parse error; Parse
// fails with a PathNotFoundError when the root or field name is unknown
// or a segment count does not fit the path's kind.
func Parse(raw string) (Path, error) {
	segs := strings.Split(raw, ".")
	if len(segs) < 2 {
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}

	switch segs[0] {
	case "world":
		return parseWorld(raw, segs[1:])
	case "characters":
		return parseCharacter(raw, segs[1:])
	case "relationships":
		return parseRelationship(raw, segs[1:])
	default:
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
}

func parseWorld(raw string, rest []string) (Path, error) {
	if len(rest) == 0 {
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
	switch rest[0] {
	case "vars":
		if len(rest) != 2 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindWorldVar, Raw: raw, VarKey: rest[1]}, nil
	case "tags":
		if len(rest) != 1 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindWorldTags, Raw: raw}, nil
	case "facts":
		if len(rest) != 3 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindWorldFact, Raw: raw, FactCategory: rest[1], FactKey: rest[2]}, nil
	case "intensity":
		if len(rest) != 1 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindWorldIntensity, Raw: raw}, nil
	default:
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
}

func parseCharacter(raw string, rest []string) (Path, error) {
	if len(rest) < 2 {
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
	id := rest[0]
	field := rest[1]
	if field == "vars" {
		if len(rest) != 3 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindCharacterVar, Raw: raw, CharacterID: id, VarKey: rest[2]}, nil
	}
	switch field {
	case "mood", "status", "traits", "goals", "fears":
		return Path{Kind: KindCharacterField, Raw: raw, CharacterID: id, Field: field}, nil
	default:
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
}

func parseRelationship(raw string, rest []string) (Path, error) {
	if len(rest) < 2 {
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
	pair := rest[0]
	parts := strings.SplitN(pair, "|", 2)
	if len(parts) != 2 {
		return Path{}, &direrr.PathNotFoundError{Path: raw}
	}
	a, b := canonical(parts[0], parts[1])
	field := rest[1]
	if field == "vars" {
		if len(rest) != 3 {
			return Path{}, &direrr.PathNotFoundError{Path: raw}
		}
		return Path{Kind: KindRelationshipVar, Raw: raw, RelA: a, RelB: b, VarKey: rest[2]}, nil
	}
	return Path{Kind: KindRelationshipField, Raw: raw, RelA: a, RelB: b, Field: field}, nil
}

func canonical(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Key returns the canonical "a|b" storage key for a relationship path.
func (p Path) Key() string {
	return p.RelA + "|" + p.RelB
}

// String returns the dotted-path string exactly as it was parsed (a
// relationship pair keeps its original order), used in rationale and
// diff output.
func (p Path) String() string {
	return p.Raw
}
