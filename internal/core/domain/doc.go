// Package domain contains the core business entities and errors for the
// Tipitaka question-answering engine. It has no dependencies on adapters
// or infrastructure.
package domain
