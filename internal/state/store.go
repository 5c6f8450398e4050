package state

import (
	"fmt"
	"sort"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// Store wraps a model.State with path-addressed access. It owns no
// mutable state itself — State is a value the caller owns — Store is
// just the exhaustive-match implementation of Path.Get/Set/etc.
type Store struct {
	State *model.State
}

// New wraps an existing state.
func New(s *model.State) *Store {
	return &Store{State: s}
}

// Clone returns a new Store over a deep copy of the wrapped state, used
// by Director at the start of every tick so selection and effect
// application never mutate a snapshot a caller still holds.
func (s *Store) Clone() *Store {
	return &Store{State: s.State.Clone()}
}

// Get resolves path against the wrapped state. A missing path returns
// direrr.PathNotFoundError; tags/lists resolve to a []model.Scalar.
func (s *Store) Get(path Path) (model.Scalar, error) {
	switch path.Kind {
	case KindWorldVar:
		v, ok := s.State.World.Vars.Get(path.VarKey)
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return v, nil

	case KindWorldTags:
		return tagListValue(s.State.World.TagList), nil

	case KindWorldFact:
		cat, ok := s.State.World.Facts[path.FactCategory]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		v, ok := cat[path.FactKey]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return v, nil

	case KindWorldIntensity:
		return s.State.World.Intensity, nil

	case KindCharacterField:
		c, ok := s.State.Characters[path.CharacterID]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return characterFieldValue(c, path.Field)

	case KindCharacterVar:
		c, ok := s.State.Characters[path.CharacterID]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		v, ok := c.Vars.Get(path.VarKey)
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return v, nil

	case KindRelationshipField:
		r, ok := s.State.Relationships[path.Key()]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return relationshipFieldValue(r, path.Field)

	case KindRelationshipVar:
		r, ok := s.State.Relationships[path.Key()]
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		v, ok := r.Vars.Get(path.VarKey)
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: path.Raw}
		}
		return v, nil
	}
	return nil, &direrr.PathNotFoundError{Path: path.Raw}
}

// GetOrEmptySet behaves like Get, but for has_tag/lacks_tag/not_in over
// sets-or-lists, an absent path resolves to an empty list rather than
// PathNotFound, per spec §4.2's coercion rule.
func (s *Store) GetOrEmptySet(path Path) model.Scalar {
	v, err := s.Get(path)
	if err != nil {
		return []model.Scalar{}
	}
	return v
}

func tagListValue(tags []string) []model.Scalar {
	out := make([]model.Scalar, len(tags))
	for i, t := range tags {
		out[i] = t
	}
	return out
}

func characterFieldValue(c *model.Character, field string) (model.Scalar, error) {
	switch field {
	case "mood":
		return c.Mood, nil
	case "status":
		return c.Status, nil
	case "traits":
		return tagListValue(c.TraitList), nil
	case "goals":
		return tagListValue(c.GoalList), nil
	case "fears":
		return tagListValue(c.FearList), nil
	}
	return nil, fmt.Errorf("unknown character field %q", field)
}

func relationshipFieldValue(r *model.Relationship, field string) (model.Scalar, error) {
	switch field {
	case "trust":
		return r.Trust, nil
	case "affection":
		return r.Affection, nil
	case "status":
		return r.Status, nil
	default:
		v, ok := r.Metrics.Get(field)
		if !ok {
			return nil, &direrr.PathNotFoundError{Path: "relationships.*." + field}
		}
		return v, nil
	}
}

// Set overwrites the value at path, creating containers as needed.
func (s *Store) Set(path Path, value model.Scalar) error {
	switch path.Kind {
	case KindWorldVar:
		s.State.World.Vars.Set(path.VarKey, value)
		return nil
	case KindWorldTags:
		list, err := toStringList(value)
		if err != nil {
			return err
		}
		s.State.World.Tags = make(map[string]struct{}, len(list))
		s.State.World.TagList = nil
		for _, t := range list {
			s.State.World.AddTag(t)
		}
		return nil
	case KindWorldFact:
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: "facts must be strings"}
		}
		if s.State.World.Facts == nil {
			s.State.World.Facts = make(map[string]model.FactCat)
		}
		cat, ok := s.State.World.Facts[path.FactCategory]
		if !ok {
			cat = make(model.FactCat)
			s.State.World.Facts[path.FactCategory] = cat
		}
		cat[path.FactKey] = str
		return nil
	case KindWorldIntensity:
		f, err := toFloat(value)
		if err != nil {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: err.Error()}
		}
		s.State.World.Intensity = clamp01(f)
		return nil
	case KindCharacterField:
		c := s.State.Character(path.CharacterID)
		return setCharacterField(c, path, value)
	case KindCharacterVar:
		c := s.State.Character(path.CharacterID)
		c.Vars.Set(path.VarKey, value)
		return nil
	case KindRelationshipField:
		r := s.State.Relationship(path.RelA, path.RelB)
		return setRelationshipField(r, path, value)
	case KindRelationshipVar:
		r := s.State.Relationship(path.RelA, path.RelB)
		r.Vars.Set(path.VarKey, value)
		return nil
	}
	return &direrr.PathNotFoundError{Path: path.Raw}
}

func setCharacterField(c *model.Character, path Path, value model.Scalar) error {
	switch path.Field {
	case "mood":
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: "mood must be a string"}
		}
		c.Mood = str
	case "status":
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: "status must be a string"}
		}
		c.Status = str
	case "traits", "goals", "fears":
		list, err := toStringList(value)
		if err != nil {
			return err
		}
		set, ptr := c.setFor(path.Field)
		for k := range set {
			delete(set, k)
		}
		*ptr = nil
		for _, v := range list {
			c.AddToSet(path.Field, v)
		}
	default:
		return fmt.Errorf("unknown character field %q", path.Field)
	}
	return nil
}

func setRelationshipField(r *model.Relationship, path Path, value model.Scalar) error {
	switch path.Field {
	case "trust":
		f, err := toFloat(value)
		if err != nil {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: err.Error()}
		}
		r.Trust = f
	case "affection":
		f, err := toFloat(value)
		if err != nil {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: err.Error()}
		}
		r.Affection = f
	case "status":
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "set", Reason: "status must be a string"}
		}
		r.Status = str
	default:
		r.Metrics.Set(path.Field, value)
	}
	return nil
}

// Add performs numeric addition at path, per spec §4.5.
func (s *Store) Add(path Path, delta model.Scalar) error {
	current, err := s.Get(path)
	if err != nil {
		if _, ok := err.(*direrr.PathNotFoundError); ok {
			current = 0.0
		} else {
			return err
		}
	}
	cf, err := toFloat(current)
	if err != nil {
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "add", Reason: "current value is not a number"}
	}
	df, err := toFloat(delta)
	if err != nil {
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "add", Reason: "operand is not a number"}
	}
	return s.Set(path, cf+df)
}

// Multiply performs numeric multiplication at path, per spec §4.5.
func (s *Store) Multiply(path Path, factor model.Scalar) error {
	current, err := s.Get(path)
	if err != nil {
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "multiply", Reason: "path not present"}
	}
	cf, err := toFloat(current)
	if err != nil {
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "multiply", Reason: "current value is not a number"}
	}
	ff, err := toFloat(factor)
	if err != nil {
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "multiply", Reason: "operand is not a number"}
	}
	return s.Set(path, cf*ff)
}

// Append pushes value onto the list/set at path, creating it first if
// absent (spec §9 open question: create-then-append).
func (s *Store) Append(path Path, value model.Scalar) error {
	switch path.Kind {
	case KindWorldTags:
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "append", Reason: "tags are strings"}
		}
		s.State.World.AddTag(str)
		return nil
	case KindCharacterField:
		switch path.Field {
		case "traits", "goals", "fears":
			str, ok := value.(string)
			if !ok {
				return &direrr.TypeMismatchError{Path: path.Raw, Op: "append", Reason: "set members are strings"}
			}
			c := s.State.Character(path.CharacterID)
			c.AddToSet(path.Field, str)
			return nil
		}
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "append", Reason: "field is not a list"}
	default:
		current, err := s.Get(path)
		var list []model.Scalar
		if err != nil {
			list = []model.Scalar{}
		} else {
			list, err = toScalarList(current)
			if err != nil {
				return &direrr.TypeMismatchError{Path: path.Raw, Op: "append", Reason: err.Error()}
			}
		}
		list = append(list, value)
		return s.Set(path, list)
	}
}

// Remove deletes the first occurrence of value from the list/set at
// path; a no-op if absent, per spec §4.5.
func (s *Store) Remove(path Path, value model.Scalar) error {
	switch path.Kind {
	case KindWorldTags:
		str, ok := value.(string)
		if !ok {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "remove", Reason: "tags are strings"}
		}
		s.State.World.RemoveTag(str)
		return nil
	case KindCharacterField:
		switch path.Field {
		case "traits", "goals", "fears":
			str, ok := value.(string)
			if !ok {
				return &direrr.TypeMismatchError{Path: path.Raw, Op: "remove", Reason: "set members are strings"}
			}
			c := s.State.Character(path.CharacterID)
			c.RemoveFromSet(path.Field, str)
			return nil
		}
		return &direrr.TypeMismatchError{Path: path.Raw, Op: "remove", Reason: "field is not a list"}
	default:
		current, err := s.Get(path)
		if err != nil {
			return nil // absent: no-op
		}
		list, err := toScalarList(current)
		if err != nil {
			return &direrr.TypeMismatchError{Path: path.Raw, Op: "remove", Reason: err.Error()}
		}
		idx := -1
		for i, v := range list {
			if scalarEqual(v, value) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
		list = append(list[:idx], list[idx+1:]...)
		return s.Set(path, list)
	}
}

func toFloat(v model.Scalar) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func toStringList(v model.Scalar) ([]string, error) {
	list, err := toScalarList(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a list of strings")
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func toScalarList(v model.Scalar) ([]model.Scalar, error) {
	switch l := v.(type) {
	case []model.Scalar:
		return l, nil
	case []string:
		out := make([]model.Scalar, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value %v is not a list", v)
	}
}

func scalarEqual(a, b model.Scalar) bool {
	return fmt.Sprintf("%T:%v", a, a) == fmt.Sprintf("%T:%v", b, b)
}
