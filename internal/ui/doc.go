// Package ui holds the color themes and lipgloss styles of the fieldfmt
// terminal output. Colors are off when NO_COLOR is set or --no-color is
// given.
package ui
