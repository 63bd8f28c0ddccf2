// Package upm defines the value types shared by the resolver, the registry
// client and the manifest engine: package names, versions, references,
// packuments and registries.
//
// All types are plain values. A [DomainName] is safe to use as a map key and
// a [Packument] decodes directly from an npm registry response.
package upm
