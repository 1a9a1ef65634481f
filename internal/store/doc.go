// Package store provides SQLite-backed durable storage for entity snapshots.
//
// Every entity lives in one row of a single table:
//
//	vaults(addr INTEGER PRIMARY KEY, content TEXT, addresses JSON)
//
//   - addr: datom.Address(entity id), the FNV-1a hash of the id as int64
//   - content: the codec envelope {"attrs":{...},"id":"..."}
//   - addresses: reserved for a reverse index of related addresses, always "[]"
//
// # Read and Write Semantics
//
//   - Load never reports "not found": an absent row, or a row whose content
//     cannot be decoded, yields an empty entity with the requested id
//   - Write is a full-snapshot upsert (ON CONFLICT(addr) DO UPDATE)
//   - A row whose stored id differs from the requested id is an address
//     collision and fails loudly with ErrAddressCollision
//
// # Database Configuration
//
//   - WAL mode
//   - locking_mode=EXCLUSIVE: one process owns the file while open
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// The Store is an explicitly owned handle: open it once, pass it to the
// engine, close it when done. Transact scopes a single storage transaction.
package store
