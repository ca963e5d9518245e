// Package crank implements the deterministic pop protocol for the oracle
// program's work-scheduling structure: selecting the due rows of a crank
// and assembling the account list that a pop submission needs.
//
// Every step is a pure function of its inputs, so independent clients
// racing on the same crank snapshot produce byte-identical submissions and
// collide at the program's conflict-detection layer instead of silently
// diverging.
package crank

import (
	"sort"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/oracle"
)

// SelectReady returns up to limit aggregators whose next update is due at
// now (unix seconds). now is caller-supplied; the selector never reads the
// wall clock.
//
// Urgency (earliest NextTimestamp first) decides WHICH rows are selected
// when more than limit are due. The selected subset is then re-sorted by
// raw address bytes: the emission order is canonical and independent of
// urgency, so concurrent callers emit identical sequences. The two sort
// passes encode different invariants; they cannot be collapsed into one.
func SelectReady(rows []oracle.CrankRow, now int64, limit int) []domain.Address {
	if limit <= 0 {
		return nil
	}

	ready := make([]oracle.CrankRow, 0, len(rows))
	for _, row := range rows {
		if row.NextTimestamp <= now {
			ready = append(ready, row)
		}
	}
	if len(ready) == 0 {
		return []domain.Address{}
	}

	// Composite key (NextTimestamp, address) keeps limit truncation
	// deterministic when due times tie across the cut.
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].NextTimestamp != ready[j].NextTimestamp {
			return ready[i].NextTimestamp < ready[j].NextTimestamp
		}
		return ready[i].Aggregator.Less(ready[j].Aggregator)
	})

	if len(ready) > limit {
		ready = ready[:limit]
	}

	selected := make([]domain.Address, len(ready))
	for i, row := range ready {
		selected[i] = row.Aggregator
	}
	domain.SortAddresses(selected)

	return selected
}
