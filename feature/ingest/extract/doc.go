// Package extract turns a generically parsed feed document (nested maps,
// slices and scalars) into flat candidate records: classes, competitor
// entries, relay teams, starts, results and raw split times.
//
// Producers disagree on details, so lookups ignore key case, accept a single
// element where a list is expected, and read attributes nested under "$", "@"
// or "_attributes" as well as flattened "@name" keys. Element text may sit
// under "_", "#text", "value" or "$t".
//
// Result lists, start lists and class lists are recognized. Entries without
// person data are kept with a nil Person so the caller can report them.
package extract
