// Package core contains the shared contracts of the SmartScout orchestration
// layer: the Event / Content / Part conversation model, the append-only
// Session state, the per-turn execution context and the step limiter that
// bounds graph transitions.
package core
