// Package llm wraps an OpenAI-compatible chat completion API for subtitle
// correction and translation.
package llm
