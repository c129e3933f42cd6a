// Package identity derives the two keys of a competitor from the identifiers
// a feed carries: the registration key and the system key. When a person has
// no identifier at all, both keys fall back to a SHA-256 hash of the class id
// and the person's family and given names.
package identity
