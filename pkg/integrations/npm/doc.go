// Package npm fetches packuments from npm-compatible registries.
//
// A packument is fetched from {registry}/{name} and decoded into
// [upm.Packument]. Responses are cached per registry and name.
//
//	client := npm.NewClient(integrations.Options{Cache: c})
//	p, err := client.FetchPackument(ctx, upm.NewRegistry(upm.OpenUPMRegistryURL, nil), "com.example.pkg")
//
// # Authentication
//
// Registries with credentials receive a bearer token, or basic auth when
// only a username is configured. The two public registries never receive
// credentials, whatever the configuration says.
//
// [upm.Packument]: github.com/openupm/openupm-cli/pkg/core/upm.Packument
package npm
