// Package utils provides loose value conversions for data decoded from
// generically typed documents, where the same field may arrive as a number,
// a numeric string or a byte slice depending on the producer.
package utils
