// Package integrations provides the shared HTTP client for registry APIs.
//
// [Client] wraps net/http with default headers, JSON decoding, retries for
// transient failures and response caching through a [cache.Cache]. The
// crates.io client lives in the crates subpackage, the GitHub tag lister
// in the github subpackage:
//
//	client := crates.NewClient(cache.NewNullCache(), cache.TTLHTTP)
//	info, err := client.FetchCrate(ctx, "serde", false) // false = use cache
//
// Status handling:
//   - 404 maps to [ErrNotFound]
//   - 429 and 5xx map to a retryable [ErrNetwork]
//   - transport failures map to a retryable [ErrNetwork]
//
// [cache.Cache]: github.com/matzehuels/cratediff/pkg/cache.Cache
package integrations
