// Package journal keeps a daily log of notes on top of the datom engine.
//
// Each day is a page entity (page:<YYYY-MM-DD>) whose page/blocks attribute
// lists the ids of its notes in insertion order. Each note is a block entity
// (block:<YYYY-MM-DD>-<nanos>) carrying its text in block/content.
//
// Every lookup is by id. Pages and blocks are never found by scanning.
package journal
