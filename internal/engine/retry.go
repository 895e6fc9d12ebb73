package engine

import (
	"context"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/llm"
	"github.com/avoronov/smb-tagger/internal/model"
)

// retryingClassifier wraps a classification client with the run's retry
// policy. The client itself never retries; this decorator is how the
// caller opts in.
type retryingClassifier struct {
	inner llm.Client
	opts  common.RetryOptions
}

// WithRetryPolicy decorates c with retry behavior. With one attempt or
// fewer the client is returned unchanged.
func WithRetryPolicy(c llm.Client, opts common.RetryOptions) llm.Client {
	if opts.MaxAttempts <= 1 {
		return c
	}
	return &retryingClassifier{inner: c, opts: opts}
}

func (r *retryingClassifier) Classify(ctx context.Context, schema model.SchemaID, input string) (model.Classification, error) {
	var result model.Classification
	err := common.WithRetry(ctx, func() error {
		var callErr error
		result, callErr = r.inner.Classify(ctx, schema, input)
		return callErr
	}, r.opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}
