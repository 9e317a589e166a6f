package storage

import "time"

// Less is the canonical list comparator: order ascending, ties broken by
// creation time, then id. Every backend must sort identically so the
// client-side fallback path yields the same result as an indexed query.
func Less(orderA, orderB int, createdA, createdB time.Time, idA, idB string) bool {
	if orderA != orderB {
		return orderA < orderB
	}
	if !createdA.Equal(createdB) {
		return createdA.Before(createdB)
	}
	return idA < idB
}
