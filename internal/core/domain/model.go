package domain

// ModelKind classifies a loadable model artifact.
type ModelKind string

// Model kinds. All kinds share one RAM budget; generation models are
// never auto-evicted under memory pressure.
const (
	ModelKindGeneration      ModelKind = "generation"
	ModelKindEmbedding       ModelKind = "embedding"
	ModelKindSpeechToText    ModelKind = "speech-to-text"
	ModelKindSpeechSynthesis ModelKind = "speech-synthesis"
)

// Valid reports whether the kind is a known model kind.
func (k ModelKind) Valid() bool {
	switch k {
	case ModelKindGeneration, ModelKindEmbedding,
		ModelKindSpeechToText, ModelKindSpeechSynthesis:
		return true
	}
	return false
}

// ModelDescriptor is a catalog entry for one loadable model.
// Invariant: Loaded implies Installed. At most one in-memory handle
// exists per ID at any time.
type ModelDescriptor struct {
	// ID is the unique model identifier (e.g. "gemma-2b-q4").
	ID string

	// Kind classifies what the model does.
	Kind ModelKind

	// RAMCostMB is the declared resident memory cost when loaded.
	RAMCostMB int

	// StoragePath is the on-disk location of the model artifact.
	// Empty until installed.
	StoragePath string

	// Installed reports whether the artifact is present on disk.
	Installed bool

	// Loaded reports whether the model is currently resident in RAM.
	Loaded bool
}
