// Command subforge runs the subtitle pipeline daemon and its companion
// CLI commands for submitting media and inspecting task state.
package main
