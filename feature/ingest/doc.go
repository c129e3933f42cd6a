// Package ingest reconciles result feeds into the stored competition state.
//
// A feed is processed in three passes driven by the bounded batch executor:
// classes, then teams and competitors, then split times. Classes touched by
// a change are announced once the passes complete.
package ingest
