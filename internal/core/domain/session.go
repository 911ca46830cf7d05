package domain

// SearchSession is the presentation state of the suggestion list.
// ActiveIndex is -1 when nothing is selected and always < len(Candidates).
type SearchSession struct {
	Query       string            `json:"query"`
	Candidates  []RankedCandidate `json:"candidates"`
	ActiveIndex int               `json:"active_index"`
	Visible     bool              `json:"visible"`
	NoResults   bool              `json:"no_results"` // placeholder entry, accepts no selection
}

// Marker is the single pin/highlight currently placed on the diagram.
type Marker struct {
	Location string `json:"location"`
	Position Point  `json:"position"`
	Version  uint64 `json:"version"`
}
