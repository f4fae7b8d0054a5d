// Package stub reads request expectations from JSON or YAML files and turns
// them into matching.RequestPattern values.
//
// A definition file holds one stub or an array of them:
//
//	- id: create-order
//	  priority: 10
//	  request:
//	    method: POST
//	    urlPath: /orders
//	    headers:
//	      Content-Type:
//	        equalTo: application/json
//	    bodyPatterns:
//	      - matchesJsonPath: $.items[0].sku
//	      - equalToJson: {"currency": "EUR"}
//	        ignoreExtraElements: true
//
// Each pattern definition sets exactly one operator. Definitions are
// validated when loaded, so a malformed regex or JSONPath is reported with
// the stub ID and the clause it belongs to instead of silently never
// matching.
package stub
