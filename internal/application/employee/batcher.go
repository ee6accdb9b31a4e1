package employee

import (
	"iter"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

// BatchCandidates groups valid candidates into consecutive batches in source order.
// A non-positive chunk size falls back to the default.
func BatchCandidates(candidates iter.Seq2[domain.Candidate, error], chunkSize int) ([]domain.Batch, error) {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}

	var (
		batches []domain.Batch
		current domain.Batch
	)
	for candidate, err := range candidates {
		if err != nil {
			return nil, err
		}
		if !candidate.Valid() {
			continue
		}

		current = append(current, candidate)
		if len(current) == chunkSize {
			batches = append(batches, current)
			current = nil
		}
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}
