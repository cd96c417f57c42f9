// Package fetch implements the source acquirer of the build core:
// populate a build's srcdir with every listed source, verified by
// SHA-256, auto-extracted when its name matches a known archive suffix.
//
// The policy (fetch order, checksum verification, common-prefix-
// stripping extraction) is implemented against a narrow Fetcher
// interface, so callers can supply their own transport. HTTPFetcher
// (with DNS caching and retry on transient failures) and LocalFetcher
// are the concrete defaults.
package fetch
