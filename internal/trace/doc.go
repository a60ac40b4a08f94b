// Package trace records what the interpreter is doing while it runs.
//
// Startup phases, top-level forms, closure calls and heap collections are
// reported as spans or point events to a Tracer. Tracing is off by default
// and costs a single interface call per event when disabled.
//
// # Usage
//
//	erre --trace=- --trace-level=detail script.R
//
// # Sinks
//
//   - Nop: discards everything
//   - StreamTracer: writes each event as it arrives (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a fatal error
//   - MultiTracer: fans out to several sinks
//
// # Scopes and levels
//
// ScopeSession covers startup and shutdown phases, ScopeToplevel one REPL
// form, ScopeCall one closure application and ScopeHeap the collector.
// LevelPhase emits session events, LevelDetail adds top-level forms and heap
// collections, LevelDebug adds every call.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSession, "base", 0)
//	defer span.End("")
package trace
