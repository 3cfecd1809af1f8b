// Package harness provides conformance testing for treeq queries.
//
// A scenario loads a content tree into a fresh in-memory store and runs
// queries against it, checking the matching paths, the chosen index, or the
// error code of each.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	content:                 # inline tree, compiler YAML form
//	  docs:
//	    a:
//	      "@type": doc
//	      title: Hello World
//	content_files:           # relative to the scenario file
//	  - ../content/library.cue
//	queries:
//	  - query: contains(d.title, $q)
//	    node_type: doc
//	    bind: { q: hello }
//	    expect: [/docs/a]
//	    expect_index: fulltext
//	  - query: contains(d.title, '"open')
//	    expect_error: INVALID_EXPRESSION
//	  - query: contains(d, 'hello')
//	    use_index: traversal
//	    expect: [/docs/a]
//
// use_index restricts the planner to one index. Results must not depend on
// it, so the same query is often repeated with each index.
//
// # Deterministic Testing
//
// Node ids come from a sequential generator and every store is a private
// in-memory SQLite database, so snapshots are stable across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/library.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
