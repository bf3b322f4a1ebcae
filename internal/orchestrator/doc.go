// Package orchestrator accepts subtitle jobs, bounds concurrency, drives
// each task through the extraction/transcription/transform pipeline, and
// recovers persisted tasks after a restart.
package orchestrator
