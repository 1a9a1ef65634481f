// Package harness runs datom transaction scenarios described in YAML.
//
// A scenario is a sequence of batches applied through the transaction
// gateway, optional per-step expectations, and assertions on the final
// stored state.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	backend: sqlite        # or badger; default sqlite
//	codec: json            # or zstd; default json
//	steps:
//	  - datoms:
//	      - ["db/add", "block:x", "block/title", "T"]
//	    expect:
//	      - id: block:x
//	        attrs: { block/title: T }
//	  - datoms:
//	      - ["db/update", "block:x", "block/title", "U"]
//	    expect_error: "unsupported op"
//	assertions:
//	  - type: final_state
//	    entity: block:x
//	    expect: { block/title: T }
//	  - type: absent
//	    entity: block:y
//	  - type: row_count
//	    count: 1
//
// # Assertion Types
//
//   - final_state: the stored entity carries the expected attributes (subset match)
//   - absent: the stored entity has no attributes
//   - row_count: the backend holds exactly N entity rows
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory backend with fixed
// transaction ids, so the trace of returned entities is reproducible and
// can be compared against a golden file.
package harness
