// Package models defines the persisted competition state: classes, teams,
// competitors, their split times and the append-only audit protocol, together
// with the result status enumeration and the audit change types.
package models
