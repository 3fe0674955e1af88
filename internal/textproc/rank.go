package textproc

import "slices"

// TopN is the number of words handed to the presenters.
const TopN = 20

type FrequencyTable map[string]int

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func Count(tokens []string) FrequencyTable {
	table := make(FrequencyTable, len(tokens))
	for _, tok := range tokens {
		table[tok]++
	}
	return table
}

// Rank returns the n most frequent tokens, highest count first. Equal counts
// keep the order in which the tokens first appeared.
func Rank(tokens []string, n int) []WordCount {
	table := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, seen := table[tok]; !seen {
			order = append(order, tok)
		}
		table[tok]++
	}

	ranked := make([]WordCount, 0, len(order))
	for _, tok := range order {
		ranked = append(ranked, WordCount{Word: tok, Count: table[tok]})
	}
	slices.SortStableFunc(ranked, func(a, b WordCount) int {
		return b.Count - a.Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Table converts ranked words back into a frequency map.
func Table(ranked []WordCount) FrequencyTable {
	table := make(FrequencyTable, len(ranked))
	for _, wc := range ranked {
		table[wc.Word] = wc.Count
	}
	return table
}
