// Package subtitle models SubRip caption blocks and implements the scene
// segmentation and text splitting used by the batch pipeline.
package subtitle
