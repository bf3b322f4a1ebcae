// Package transcribe invokes the whisper CLI to turn audio into SRT
// captions and defines the model catalog callers may select from.
package transcribe
