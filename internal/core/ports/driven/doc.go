// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RepoClient: Read-only access to a remote repository tree
//   - SourceCollector: Yields a repository's source files for analysis
//   - ReportWriter: Persists the exported artifacts
//
// # Optional Interfaces
//
//   - TokenProvider: Supplies the API credential. A nil provider is
//     valid and yields unauthenticated requests with a lower quota.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
