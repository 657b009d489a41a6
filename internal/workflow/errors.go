package workflow

import "errors"

var (
	// ErrInvalidConfiguration reports a missing collaborator or bad loop
	// parameters at construction time. Never retried.
	ErrInvalidConfiguration = errors.New("workflow: invalid configuration")
	// ErrNoSuppliers reports that supplier retrieval returned zero results,
	// which leaves the pipeline with no identifier to rank.
	ErrNoSuppliers = errors.New("workflow: no suppliers retrieved")
	// ErrUnknownSupplier reports a ranking that chose a supplier identifier
	// absent from the retrieved context, twice in a row.
	ErrUnknownSupplier = errors.New("workflow: ranked supplier not present in retrieved context")
)
