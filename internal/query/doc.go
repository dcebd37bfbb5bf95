// Package query loads batch scoring requests from a file.
//
// A query file lists points to score, each with an optional prior and an
// optional set of class ids. Two encodings are supported, selected by file
// extension:
//
//   - YAML (.yaml, .yml), decoded with gopkg.in/yaml.v3
//   - JSON (.json, .jsonc), with comments and trailing commas stripped by
//     github.com/tidwall/jsonc before decoding with encoding/json
//
// Example (YAML):
//
//	prior: 0.5
//	queries:
//	  - name: probe
//	    point: {x: 6.98645, y: -2.936}
//	    classes: [0, 1]
//	  - point: {x: 0, y: 0}
//	    prior: 0.25
//
// Unknown fields are rejected in both encodings.
package query
