// Package transact validates loosely-typed wire tuples and hands them to the
// engine.
//
// A tuple is a 4-element list [op, e, a, v]:
//   - op: "db/add" or "db/retract", optionally written with a leading ':'
//   - e, a: strings (attribute names are NFC-normalized)
//   - v: any JSON-like value, passed through
//
// Every tuple in a batch is parsed before anything touches storage; the
// first invalid tuple fails the whole batch with a *ParseError.
package transact
