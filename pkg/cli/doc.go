// Package cli provides the command-line interface for reqdiff.
//
// Commands work offline on stub definition files and request capture files:
//   - match: find the stub serving each captured request, or its near misses
//   - diff: render the expected/actual diff between one stub and requests
//   - verify: assert how many captured requests satisfy a stub
//   - validate: check stub files against their schema and compile them
//   - schema: print the JSON Schema of stub files
//   - version: show reqdiff version
//
// Requests come either from capture files (--requests: JSON, YAML or a
// SQLite journal written by requestlog.SQLiteStore) or
// from flags describing a single request (--method, --url, -H, --cookie,
// --body, --body-file).
//
// Usage:
//
//	reqdiff match --stubs 'stubs/**/*.yaml' --requests captures.json
//	reqdiff diff --stubs stubs/ --stub create-order --method POST --url /orders --body '{"id": 1}'
//	reqdiff verify --stubs stubs.yaml --stub create-order --requests captures.json --at-least 1
package cli
