// Package requestlog is the request journal: captured HTTP requests that
// verification and diffing run against.
//
// Entry is the serializable capture of one request. It converts to a
// matching.Request for evaluation. A Store holds entries; MemoryStore is a
// bounded in-memory ring buffer with filtering and live subscriptions.
// CaptureHandler records requests passing through an http.Handler, and
// LoadFile reads entries previously written as JSON or YAML.
//
//	store := requestlog.NewMemoryStore(1000)
//	srv := &http.Server{Handler: requestlog.CaptureHandler(store, mux, logger)}
//	...
//	for _, e := range store.List(&requestlog.Filter{Method: "POST"}) {
//	    r := e.ToRequest()
//	}
package requestlog
