// Package tui is the terminal player: the source form above the transport controls.
package tui

// state is where keyboard focus is.
type state int

const (
	formState state = iota
	controlsState
)
