// Package format provides the pure string formatting helpers of fieldfmt:
// price digit grouping and human-readable byte sizes.
//
// All functions in this package are free of side effects and safe for
// concurrent use.
package format
