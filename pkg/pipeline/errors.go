package pipeline

import "errors"

var (
	// ErrStoreWrite means a bulk write to the knowledge store kept failing
	// after its bounded retries. The whole batch is rolled forward on resume;
	// the checkpoint stays at the last committed batch boundary.
	ErrStoreWrite = errors.New("knowledge store batch write failed")

	// ErrJobTerminal means the job is in a state that can never advance.
	ErrJobTerminal = errors.New("ingestion job is in a terminal state")

	// ErrJobNotActive is returned by control operations when no run currently
	// holds the job.
	ErrJobNotActive = errors.New("ingestion job has no active run")
)
