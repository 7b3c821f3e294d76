// Package harness runs conformance scenarios against the compiler.
//
// A scenario is a YAML file listing source units that are compiled in
// order against one session:
//
//	name: inheritance_chain
//	description: Members resolve through the parent chain
//	options:
//	  strict_mode: true
//	units:
//	  - source: |
//	      B <- A
//	      def A.m.f
//	  - source: obj -> clone B.m.f
//	    expect:
//	      success: true
//	      cells: ["clone(A.m.f) [R]"]
//
// Every scenario runs with a fixed session id, a deterministic sequence
// clock, and a fresh in-memory store. After the last unit the stored
// session is replayed and any divergence fails the scenario, so each
// scenario also checks that compilation is reproducible.
//
// Snapshots of the unit outcomes are compared against golden files in
// testdata/golden using canonical JSON.
package harness
