/*
Package session implements workpad access and persistence orchestration.

The Manager is the single writer for each workpad ID: it loads a snapshot,
folds edit commands over it with the engine, and persists the result. Access to
the same ID is serialized with a ref-counted local mutex, optionally backed by a
distributed lock so that several replicas can share one store.
*/
package session
