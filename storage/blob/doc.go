// Package blob provides an interface for implementing
// blob drivers that the stash serializer can persist
// values into.
//
// A blob plugin is a factory for store instances. A store is
// a flat, keyed collection of byte strings. Stores know nothing
// about keys beyond their bytes: a Mapping layered over a store
// derives each key from the content it addresses, checks for
// collisions and hands the key back to the caller.
//
//  - Mapping (content addressing, collision checks)
//    - Store (ram, treemap, fsdb, bbolt, lsm, ...)
//      - key1: blob
//      - key2: blob
//
// Stores may themselves wrap other stores. The compressing
// drivers and the remote driver are built this way.
package blob
