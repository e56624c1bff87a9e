package dag

// Plan describes how a graph will execute without running it.
type Plan struct {
	Order     []string   `json:"order"`
	Levels    [][]string `json:"levels"`
	Terminals []string   `json:"terminals"`
}

// Describe validates g and returns its execution plan.
func Describe(g *Graph) (*Plan, error) {
	order, err := g.validate()
	if err != nil {
		return nil, err
	}
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	return &Plan{
		Order:     order,
		Levels:    levels,
		Terminals: g.EndNodeIDs(),
	}, nil
}
