// Package pipeline applies ordered text-transform stages to subtitle scenes
// concurrently and reassembles the results in original block order.
package pipeline
