// Package resource maps integer handles to host-side values.
//
// A script cannot hold a Go value, so anything that must outlive a single
// bridge call (a streaming decoder, for instance) lives in a Table and the
// script holds its Handle instead:
//
//	table := resource.NewTable[*stream](1024)
//
//	h, err := table.Insert(s)  // fails once 1024 values are live
//	s, ok := table.Get(h)
//	s, ok = table.Remove(h)    // the handle is dead from here on
//
// Handle 0 is never issued, so a zeroed handle from a script is always
// rejected.
//
// # Observers
//
// Subscribe to lifecycle events, e.g. to keep a gauge of live values:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        gauge.Inc()
//	    case resource.EventDropped:
//	        gauge.Dec()
//	    }
//	}))
//
// # Memory Management
//
// Values are not garbage collected while their handle is live. The host
// must call Remove when the script releases a handle. Close drops every
// remaining value, calling Drop on those implementing Dropper, and refuses
// further inserts.
package resource
