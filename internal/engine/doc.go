// Package engine applies batches of datoms to stored entities.
//
// Apply is the transactional core:
//  1. Datoms are partitioned by entity id; each group keeps input order
//  2. Each entity is loaded (existing or empty)
//  3. The group is replayed in order: Add sets, Retract deletes
//  4. The mutated snapshot is written back
//
// The whole batch runs inside one backend transaction, so a failure on any
// entity leaves none of the batch's writes behind. Groups are processed one
// at a time in order of first appearance; the engine never fans out.
package engine
