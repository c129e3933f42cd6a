// Package repository persists classes, teams, competitors, splits and the
// audit protocol with GORM. Every returned error is a *database.Error, so
// callers can branch on database.IsNotFound and database.IsConflict.
//
// ReplaceSplits runs a bounded transaction through database.Transactor.
package repository
