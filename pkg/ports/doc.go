/*
Package ports defines the driven ports (interfaces) for the workpad engine.

These interfaces decouple the pure reducer from the shell around it, allowing
workpads to be persisted in various backends and edited from several transports.

# Key Interfaces

  - Applier: Folds edit commands over a workpad snapshot (implemented by workpad.Engine).
  - WorkpadStore: Persists and loads workpad documents by ID.
  - DistributedLocker: Provides distributed locking for concurrent edits across replicas.
*/
package ports
