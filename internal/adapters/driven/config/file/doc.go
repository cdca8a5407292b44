// Package file provides the TOML configuration store.
//
// Nested tables are flattened into dot-notation keys, so
//
//	[marketplace]
//	requests_per_second = 5
//
// is read as "marketplace.requests_per_second".
package file
