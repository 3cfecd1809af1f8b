// Package testutil provides fixtures shared by package tests: an in-memory
// content tree with cursors, property constructors and a deterministic id
// generator for stores.
package testutil
