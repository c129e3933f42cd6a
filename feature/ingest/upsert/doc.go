// Package upsert creates or updates classes, relay teams and competitors from
// feed records.
//
// Classes and teams are overwritten without auditing. Competitors are matched
// by event and system key; every tracked field whose normalized incoming value
// differs from the stored one produces an audit entry, and fields the feed
// leaves out keep their stored values. Audit failures are logged and never
// block the competitor update.
package upsert
