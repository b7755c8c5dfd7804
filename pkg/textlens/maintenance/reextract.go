package maintenance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// Extractor is the part of the engine a re-extraction run needs.
type Extractor interface {
	ListDocuments(ctx context.Context) ([]store.Document, error)
	CreateExtraction(ctx context.Context, docID string, tags []patterns.Tag) (store.Extraction, error)
}

// Reextractor replays extraction over every stored document, replacing
// earlier results.
type Reextractor struct {
	Engine Extractor
	Tags   []patterns.Tag
	Logger *slog.Logger
}

// Result summarizes the run.
type Result struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Matches   int `json:"matches"`
}

// Run extracts every document. Documents without text are skipped; other
// per-document failures are counted and the run continues. A cancelled
// context stops the run and is returned.
func (r *Reextractor) Run(ctx context.Context) (Result, error) {
	var res Result
	if r.Engine == nil {
		return res, errors.New("reextractor: invalid configuration")
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	tags := r.Tags
	if len(tags) == 0 {
		tags = patterns.Tags()
	}

	docs, err := r.Engine.ListDocuments(ctx)
	if err != nil {
		return res, err
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++

		x, err := r.Engine.CreateExtraction(ctx, d.ID, tags)
		switch {
		case err == nil:
			res.Updated++
			res.Matches += x.TotalMatches
		case errors.Is(err, internalerr.ErrInvalidArgument), errors.Is(err, internalerr.ErrNotFound):
			res.Skipped++
			log.Debug("document skipped", slog.String("document", d.ID), slog.Any("error", err))
		default:
			res.Errors++
			log.Warn("extraction failed", slog.String("document", d.ID), slog.Any("error", err))
		}
	}
	return res, nil
}
