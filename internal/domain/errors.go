package domain

import "errors"

var (
	// ErrMalformedPuzzle marks construction-time validation failures;
	// never recoverable.
	ErrMalformedPuzzle = errors.New("malformed puzzle")

	// ErrInfeasible marks a line (or a whole board) that cannot be
	// satisfied under the current cell states. Recovered by the callers
	// that speculate (probing, backtracking); surfaces to the end user
	// only as the Unsolvable status.
	ErrInfeasible = errors.New("infeasible")

	// ErrSnapshotMisuse marks a restore or drop out of LIFO order.
	// The board panics with it: this is a programming error.
	ErrSnapshotMisuse = errors.New("snapshot restored out of LIFO order")
)
