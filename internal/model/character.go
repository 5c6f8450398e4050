package model

// Character is a narrative actor's mutable state, keyed by a stable id
// in State.Characters.
type Character struct {
	Mood   string              `json:"mood"`
	Status string              `json:"status"`
	Traits map[string]struct{} `json:"-"`
	Goals  map[string]struct{} `json:"-"`
	Fears  map[string]struct{} `json:"-"`

	TraitList []string `json:"traits"`
	GoalList  []string `json:"goals"`
	FearList  []string `json:"fears"`

	Vars OrderedVars `json:"vars"`
}

// NewCharacter returns an empty character state.
func NewCharacter() *Character {
	return &Character{
		Traits: make(map[string]struct{}),
		Goals:  make(map[string]struct{}),
		Fears:  make(map[string]struct{}),
		Vars:   NewOrderedVars(),
	}
}

// setFor returns the membership set and ordered list backing one of the
// three character sets, identified by field name ("traits", "goals",
// "fears").
func (c *Character) setFor(field string) (map[string]struct{}, *[]string) {
	switch field {
	case "traits":
		return c.Traits, &c.TraitList
	case "goals":
		return c.Goals, &c.GoalList
	case "fears":
		return c.Fears, &c.FearList
	default:
		return nil, nil
	}
}

// AddToSet inserts value into the named set (traits/goals/fears).
func (c *Character) AddToSet(field, value string) {
	set, list := c.setFor(field)
	if set == nil {
		return
	}
	if _, exists := set[value]; exists {
		return
	}
	set[value] = struct{}{}
	*list = append(*list, value)
	switch field {
	case "traits":
		c.Traits = set
	case "goals":
		c.Goals = set
	case "fears":
		c.Fears = set
	}
}

// RemoveFromSet deletes value from the named set; no-op if absent.
func (c *Character) RemoveFromSet(field, value string) {
	set, list := c.setFor(field)
	if set == nil {
		return
	}
	if _, exists := set[value]; !exists {
		return
	}
	delete(set, value)
	for i, v := range *list {
		if v == value {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
}

// Clone returns a deep, independent copy.
func (c *Character) Clone() *Character {
	out := &Character{
		Mood:      c.Mood,
		Status:    c.Status,
		Traits:    make(map[string]struct{}, len(c.Traits)),
		Goals:     make(map[string]struct{}, len(c.Goals)),
		Fears:     make(map[string]struct{}, len(c.Fears)),
		TraitList: append([]string(nil), c.TraitList...),
		GoalList:  append([]string(nil), c.GoalList...),
		FearList:  append([]string(nil), c.FearList...),
		Vars:      c.Vars.Clone(),
	}
	for k := range c.Traits {
		out.Traits[k] = struct{}{}
	}
	for k := range c.Goals {
		out.Goals[k] = struct{}{}
	}
	for k := range c.Fears {
		out.Fears[k] = struct{}{}
	}
	return out
}

// Relationship is the mutable state of an unordered pair of characters,
// stored canonically (lexicographically sorted ids) by the owning State.
type Relationship struct {
	Trust     float64     `json:"trust"`
	Affection float64     `json:"affection"`
	Metrics   OrderedVars `json:"metrics"` // other numeric metrics, by name
	Status    string      `json:"status"`
	Vars      OrderedVars `json:"vars"`
}

// NewRelationship returns a zero-valued relationship state.
func NewRelationship() *Relationship {
	return &Relationship{
		Metrics: NewOrderedVars(),
		Vars:    NewOrderedVars(),
	}
}

// Clone returns a deep, independent copy.
func (r *Relationship) Clone() *Relationship {
	return &Relationship{
		Trust:     r.Trust,
		Affection: r.Affection,
		Metrics:   r.Metrics.Clone(),
		Status:    r.Status,
		Vars:      r.Vars.Clone(),
	}
}

// CanonicalPairKey returns the canonical storage key for an unordered
// pair, sorting the two ids lexicographically and joining with "|".
func CanonicalPairKey(a, b string) string {
	if a <= b {
		return a + "|" + b
	}
	return b + "|" + a
}
