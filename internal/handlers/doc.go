// Package handlers implements the HTTP API: library statistics,
// artwork lookup and assignment, scan control and maintenance.
package handlers
