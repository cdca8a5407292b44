// Package domain defines the core business entities for the listing bot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProductRecord: A pending row of the product queue
//   - OperationKind: The lifecycle operation a row requests
//   - Category / CategorySettings: Marketplace category tree data and rules
//   - RemoteItem: The subset of a marketplace listing the operations read
//   - Failure / FailureKind: The single failure taxonomy and its outcome codes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Money
//
// Prices are held as integer cents. Adapters convert to and from the
// decimal representations used by the database and the marketplace API.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
