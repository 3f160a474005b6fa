// Package ui implements the terminal interface for browsing video and
// document feeds, resolving playable streams, and triggering feed refreshes.
package ui
