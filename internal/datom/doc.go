// Package datom provides the entity-attribute-value types shared by every
// other internal package.
//
// This package contains types and pure functions only. It imports nothing
// internal, which keeps it the foundational layer:
//   - Value: sealed interface over JSON-like attribute values
//   - Entity: an id plus its current attribute map
//   - Datom: one Add or Retract fact mutation
//   - Address: the int64 storage key derived from an entity id
//   - Session / Transactor: the storage contract implemented by backends
package datom
