// Package planner decides, from a file's probe result, whether it gets the
// glitch treatment or is skipped, and resolves where its artifacts go.
package planner
