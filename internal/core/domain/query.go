package domain

import "time"

// Default query parameters.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.6
	DefaultMaxTokens = 2048
)

// QueryFilter restricts the retrieval candidate set.
type QueryFilter struct {
	// Collections is an inclusion list of corpus collections (pitaka).
	// Empty means all collections.
	Collections []string

	// UserDocumentsOnly restricts search to user-imported chunks.
	UserDocumentsOnly bool

	// IncludeUserDocuments adds user-imported chunks to the corpus
	// candidate set. Ignored when UserDocumentsOnly is set.
	IncludeUserDocuments bool

	// DocumentID restricts user-document search to a single document.
	DocumentID string
}

// QueryOptions configures a question-answering query.
type QueryOptions struct {
	// TopK is the maximum number of chunks used as context.
	TopK int

	// Threshold is the minimum cosine similarity for a chunk to be
	// considered relevant.
	Threshold float64

	// MaxContextTokens bounds the assembled context window.
	MaxContextTokens int

	// Filter restricts the candidate chunk set.
	Filter QueryFilter
}

// Normalized returns a copy with zero values replaced by defaults.
func (o QueryOptions) Normalized() QueryOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxContextTokens <= 0 {
		o.MaxContextTokens = DefaultMaxTokens
	}
	return o
}

// RAGResponse is the grounded answer returned to callers.
type RAGResponse struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`

	// Sources cites the chunks that were part of the generation context.
	Sources []Citation `json:"sources"`

	// Confidence estimates how well the answer is grounded, in [0,1].
	// 0 when no relevant context was found.
	Confidence float64 `json:"confidence"`

	// ProcessingTime is the wall-clock duration of the query.
	ProcessingTime time.Duration `json:"processing_time"`
}

// StoreStats reports chunk store contents.
type StoreStats struct {
	// CorpusChunks is the number of fixed corpus chunks.
	CorpusChunks int `json:"corpus_chunks"`

	// UserChunks is the number of user-document chunks.
	UserChunks int `json:"user_chunks"`

	// Documents is the number of user-imported documents.
	Documents int `json:"documents"`
}

// VoiceEventType identifies a voice pipeline event.
type VoiceEventType string

// Voice event types, emitted in order during a voice interaction.
const (
	// VoiceEventTranscript carries the recognised question text.
	VoiceEventTranscript VoiceEventType = "transcript"

	// VoiceEventResponse carries an answer text fragment.
	VoiceEventResponse VoiceEventType = "response"

	// VoiceEventAudio carries synthesised answer audio.
	VoiceEventAudio VoiceEventType = "audio"
)

// VoiceEvent is one typed event in the voice interaction stream.
type VoiceEvent struct {
	// Type identifies the event payload.
	Type VoiceEventType

	// Text is the transcript or response fragment.
	Text string

	// Audio is the synthesised speech payload for audio events.
	Audio []byte

	// Response is the final grounded response, set on the last
	// response event only.
	Response *RAGResponse
}
