// Package hostcall dispatches bridge calls to host operation handlers.
//
// A Registry maps operation names to Handlers and implements
// textcodec.Bridge. Hosts are registered either explicitly, through
// Operations, or by reflection: every exported method with the Handler
// signature is registered under its kebab-case name, so DecoderOpen serves
// "decoder-open".
//
// Calls that cross a process or sandbox boundary are carried in CBOR
// envelopes. Serve turns an encoded Request into an encoded Response and
// never fails; errors travel as a status code plus kind, and
// ErrorFromStatus rebuilds an *errors.Error of the same kind on the other
// side.
package hostcall
