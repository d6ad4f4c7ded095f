package reputation

// ActionDefinition is a reputation-affecting action and its base score
// delta before multipliers and faction amplification.
type ActionDefinition struct {
	ID          string `json:"id"`
	BaseDelta   int    `json:"base_delta"`
	Description string `json:"description,omitempty"`
}

// ActionCatalog is the table of known reputation actions, keyed by id.
type ActionCatalog struct {
	Actions []ActionDefinition `json:"actions"`

	index map[string]ActionDefinition
}

// NewActionCatalog builds a catalog with its lookup index.
func NewActionCatalog(actions []ActionDefinition) *ActionCatalog {
	c := &ActionCatalog{Actions: actions}
	c.buildIndex()
	return c
}

func (c *ActionCatalog) buildIndex() {
	c.index = make(map[string]ActionDefinition, len(c.Actions))
	for _, a := range c.Actions {
		c.index[a.ID] = a
	}
}

// Lookup returns the action definition for id.
func (c *ActionCatalog) Lookup(id string) (ActionDefinition, bool) {
	if c.index == nil {
		c.buildIndex()
	}
	a, ok := c.index[id]
	return a, ok
}

// Validate reports duplicate or empty action ids.
func (c *ActionCatalog) Validate() []string {
	var problems []string
	seen := make(map[string]bool, len(c.Actions))
	for _, a := range c.Actions {
		if a.ID == "" {
			problems = append(problems, "action with empty id")
			continue
		}
		if seen[a.ID] {
			problems = append(problems, "duplicate action id: "+a.ID)
		}
		seen[a.ID] = true
	}
	return problems
}

// DefaultActionCatalog returns the built-in action table.
func DefaultActionCatalog() *ActionCatalog {
	return NewActionCatalog([]ActionDefinition{
		{ID: "quest_completed", BaseDelta: 15, Description: "Finished a quest for a patron"},
		{ID: "quest_failed", BaseDelta: -10, Description: "Abandoned or botched a quest"},
		{ID: "combat_victory_bandit", BaseDelta: 10, Description: "Defeated a bandit"},
		{ID: "combat_victory_monster", BaseDelta: 12, Description: "Slew a monster threatening the roads"},
		{ID: "combat_victory_guard", BaseDelta: -25, Description: "Cut down a town guard"},
		{ID: "combat_victory_citizen", BaseDelta: -40, Description: "Killed an ordinary citizen"},
		{ID: "location_discovered", BaseDelta: 5, Description: "Charted a new location"},
		{ID: "npc_interacted", BaseDelta: 1, Description: "Traded words with a local"},
		{ID: "travel_completed", BaseDelta: 2, Description: "Completed a trade route"},
		{ID: "donation", BaseDelta: 8, Description: "Gave coin to a temple or the poor"},
		{ID: "helped_citizen", BaseDelta: 5, Description: "Helped a citizen in trouble"},
		{ID: "theft", BaseDelta: -15, Description: "Caught stealing"},
		{ID: "smuggling", BaseDelta: -20, Description: "Caught moving contraband"},
		{ID: "assault", BaseDelta: -30, Description: "Assaulted someone in town"},
		{ID: "murder", BaseDelta: -75, Description: "Murdered someone"},
	})
}
