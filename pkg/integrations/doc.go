// Package integrations provides HTTP clients for package registries.
//
// The [Client] type holds what every registry client needs: a DNS-caching
// transport, response caching through [cache.Cache], retries with
// exponential backoff and a circuit breaker per registry host. Registry
// protocols live in subpackages:
//
//   - [npm]: npm-compatible registries (packuments)
//   - [hub]: packages bundled with locally installed editors
//
// Errors carry codes from the errors package so callers can tell a missing
// package (PACKAGE_NOT_FOUND) from an unreachable registry (NETWORK_ERROR)
// or rejected credentials (UNAUTHORIZED).
//
// [cache.Cache]: github.com/openupm/openupm-cli/pkg/cache.Cache
// [npm]: github.com/openupm/openupm-cli/pkg/integrations/npm
// [hub]: github.com/openupm/openupm-cli/pkg/integrations/hub
package integrations
