// Package client implements the lingvoro client application runtime.
//
// It wires configuration, storage, the sync engine, and background workers
// into a single process lifecycle.
package client
