// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - MarketplaceGateway: Typed marketplace API (items, categories, compatibilities, pictures)
//   - CredentialBroker: Exchanges seller credentials for access tokens
//   - ProductQueue / OutcomeRecorder: Product queue persistence
//   - CategoryLookupStore / StatusCheckStore: Auxiliary queue persistence
//   - PayloadBuilder / AttributeGenerator / PictureUploader: Request composition
//   - ConfigStore: Application configuration
//   - RunControlSource: The operator's loop switch
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReceiptLog: Publication audit log. Without it, receipts are skipped.
//   - OutcomeObserver: Metrics and event publishing.
//   - BatchHistoryStore: Pass history. Without it, history is not kept.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
