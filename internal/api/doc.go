// Package api exposes the HTTP surface for submitting media, polling task
// progress, and downloading finished subtitle artifacts.
package api
