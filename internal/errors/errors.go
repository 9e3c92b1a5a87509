package errors

import "fmt"

// ErrValidation reports a rejected input field
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrTransientFeed reports a recoverable price-feed failure during sync.
// The affected asset is skipped and the sync continues.
type ErrTransientFeed struct {
	Symbol string
	Err    error
}

func (e *ErrTransientFeed) Error() string {
	return fmt.Sprintf("price feed failed for %s: %v", e.Symbol, e.Err)
}

func (e *ErrTransientFeed) Unwrap() error {
	return e.Err
}

// ErrNotRegistered reports that no trained model exists for the
// requested (asset, model type) pair. The job fails without retry.
type ErrNotRegistered struct {
	AssetID   int
	ModelType string
}

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("no trained model registered for asset %d type %s", e.AssetID, e.ModelType)
}

// ErrArtifactMissing reports that neither the descriptor path nor the
// models-directory fallback resolved to an existing artifact file.
type ErrArtifactMissing struct {
	Path string
}

func (e *ErrArtifactMissing) Error() string {
	return fmt.Sprintf("model file missing: %s", e.Path)
}

// ErrUnsupportedModelType reports a model type the executor cannot run
type ErrUnsupportedModelType struct {
	ModelType string
}

func (e *ErrUnsupportedModelType) Error() string {
	return fmt.Sprintf("unsupported model type: %s", e.ModelType)
}

// ErrInvalidTransition reports an illegal job status edge
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid job transition %s -> %s", e.From, e.To)
}

// ErrPersistence wraps a failed repository mutation. It propagates to
// the caller of the mutating operation.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}
