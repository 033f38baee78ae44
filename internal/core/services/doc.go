// Package services implements the engine's business logic: the model
// lifecycle controller, the retrieval engine, the answer synthesizer,
// the query orchestrator, the import pipeline and the voice pipeline.
// Services depend only on domain types and driven ports.
package services
