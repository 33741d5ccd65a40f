// Package events defines the observable events emitted by the orchestration
// loop: listening-session lifecycle, transcripts, tool execution and
// narration handoffs. Events are delivered through callbacks registered on
// the orchestrator; they carry no behavior of their own.
package events
