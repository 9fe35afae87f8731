package ingest

import (
	"context"
	"sync"

	"hardware-catalog-service/internal/domain"
)

// ProductUpserter is the slice of the catalog store the importer needs.
type ProductUpserter interface {
	UpsertProductByName(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// RowFailure records one row that could not be upserted.
type RowFailure struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult is the aggregate outcome of one ingested sheet. The batch is
// best-effort: a failing row never aborts the rest, it is reported here.
type BatchResult struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Failures  []RowFailure `json:"failures,omitempty"`
}

// Importer applies parsed price-list rows to the catalog store.
type Importer struct {
	store   ProductUpserter
	workers int
}

// NewImporter creates an Importer that runs at most workers concurrent
// upserts per batch.
func NewImporter(store ProductUpserter, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{store: store, workers: workers}
}

// Run upserts every import concurrently through a bounded worker pool and
// waits for all of them. Rows have no ordering dependency on each other;
// the per-name upsert is atomic at the store layer.
func (im *Importer) Run(ctx context.Context, imports []ProductImport, createdBy *string) BatchResult {
	result := BatchResult{Total: len(imports)}
	if len(imports) == 0 {
		return result
	}

	workers := im.workers
	if workers > len(imports) {
		workers = len(imports)
	}

	errs := make([]error, len(imports))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				product := imports[idx].Product(createdBy)
				_, err := im.store.UpsertProductByName(ctx, &product)
				errs[idx] = err
			}
		}()
	}
	for idx := range imports {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for idx, err := range errs {
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, RowFailure{
				Row:    idx,
				Name:   imports[idx].Name,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result
}
