// Package common holds helpers shared by the daemon and the CLI commands.
//
// It provides a lightweight gRPC client for the Control service with call
// timeouts, and a process scan used to detect concurrently running daemons.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
