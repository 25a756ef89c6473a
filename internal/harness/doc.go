// Package harness runs conformance suites against the canonicalizer.
//
// A suite is a YAML file of vectors. Each vector names an input document, the
// format it is written in, and either the exact canonical text it must
// produce or the error it must fail with. Suites let independent
// implementations share one set of expectations.
//
// # Suite Format
//
//	name: basic
//	description: "Ordering and number formatting"
//	profile: rich
//	vectors:
//	  - name: map-keys-sorted
//	    input: '{:b 2 :a 1}'
//	    expect:
//	      canonical: '{:a 1 :b 2}'
//	  - name: json-duplicate-key
//	    format: json
//	    input: '{"a": 1, "a": 2}'
//	    expect:
//	      error: { kind: DuplicateKey, path: "[1]" }
//
// # Checks
//
// Besides the expectation written in the vector, every run also checks
// properties that hold for all inputs:
//
//   - idempotence: successful output reads back and re-emits unchanged
//   - validator agreement: Explain reports exactly the error emission fails with
//
// # Usage
//
//	suite, err := harness.LoadSuite("testdata/suites/basic.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := harness.Run(suite)
//	if !result.Pass {
//	    for _, v := range result.Failed() {
//	        log.Println(v.Name, v.Errors)
//	    }
//	}
package harness
