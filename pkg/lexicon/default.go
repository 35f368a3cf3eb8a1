package lexicon

// DefaultPairs is the built-in contradiction table.
var DefaultPairs = []Pair{
	{Left: "always", Right: "never"},
	{Left: "do", Right: "don't"},
	{Left: "should", Right: "shouldn't"},
	{Left: "must", Right: "must not"},
	{Left: "formal", Right: "casual"},
	{Left: "brief", Right: "detailed"},
	{Left: "fast", Right: "thorough"},
}

// Default returns a fresh copy of the built-in table using substring matching.
func Default() *Table {
	pairs := make([]Pair, len(DefaultPairs))
	copy(pairs, DefaultPairs)
	return &Table{
		Match: MatchSubstring,
		Pairs: pairs,
	}
}
