// Package harness provides conformance testing for tag queries.
//
// A scenario loads a fixed set of entries into a fresh in-memory store and
// runs listing queries over them. Every query is evaluated twice: through
// the compiled SQL against SQLite and through filterir.Match over the
// entries held in memory. The two paths must return the same entries in
// the same order, and both must equal the scenario's expectation when one
// is given.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	timezone: Europe/Copenhagen    # optional
//	entries:
//	  - uuid: e-1
//	    type: request
//	    tags: ["status:403"]
//	    created_at: "2024-01-01 10:00:00"
//	    hidden: false              # optional
//	    batch_id: b-1              # optional
//	    family_hash: f-1           # optional
//	queries:
//	  - name: forbidden
//	    type: request              # optional, empty lists every type
//	    tag: "status:403"
//	    expect: ["e-1"]            # optional, newest first
//
// Query options batch_id, family_hash, before_sequence and limit map to
// ir.QueryOptions. Entries are stored in file order, so the n-th entry
// gets sequence n.
//
// # Golden Files
//
// RunWithGolden snapshots each query's compiled filter and result to
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
