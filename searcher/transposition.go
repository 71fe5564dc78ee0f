package searcher

import "sync"

type bound int8

const (
	exact bound = iota
	lower       // Score is a lower bound (the node failed high)
	upper       // Score is an upper bound (the node failed low)
)

// Entries only answer probes for the exact remaining depth they were searched
// at, so memoized results equal the unmemoized ones.
type tableKey struct {
	state string
	depth int
}

type tableEntry struct {
	score float64
	flag  bound
}

// transpositions memoizes node values within one search call. Scores are
// relative to that call's root player, so a table is never reused across calls.
type transpositions struct {
	sync.RWMutex
	entries map[tableKey]tableEntry
}

func newTranspositions() *transpositions {
	return &transpositions{entries: make(map[tableKey]tableEntry)}
}

func (t *transpositions) probe(key tableKey, alpha, beta float64) (float64, bool) {
	t.RLock()
	entry, ok := t.entries[key]
	t.RUnlock()
	if !ok {
		return 0, false
	}

	switch entry.flag {
	case exact:
		return entry.score, true
	case lower:
		if entry.score >= beta {
			return entry.score, true
		}
	case upper:
		if entry.score <= alpha {
			return entry.score, true
		}
	}
	return 0, false
}

// store records score searched with the window (alpha, beta).
func (t *transpositions) store(key tableKey, score, alpha, beta float64) {
	flag := exact
	if score <= alpha {
		flag = upper
	} else if score >= beta {
		flag = lower
	}

	t.Lock()
	defer t.Unlock()

	if old, ok := t.entries[key]; ok && old.flag == exact && flag != exact {
		return
	}
	t.entries[key] = tableEntry{score: score, flag: flag}
}

func (t *transpositions) size() int {
	t.RLock()
	defer t.RUnlock()

	return len(t.entries)
}
