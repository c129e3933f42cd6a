// Package splits keeps the stored split times of each competitor equal to
// the latest feed, one competitor at a time.
package splits
