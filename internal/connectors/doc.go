// Package connectors provides implementations of the RepoClient
// interface for repository hosting services. Each connector knows how
// to list and fetch a repository tree from a specific host API.
package connectors
