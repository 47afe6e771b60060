// Package crates provides an HTTP client for the crates.io API.
//
// # Usage
//
//	client := crates.NewClient(backend, cache.TTLHTTP)
//
//	info, err := client.FetchCrate(ctx, "serde", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.Name, info.Version, info.Repository)
//
//	v, err := client.FetchVersion(ctx, "serde", "1.0.223", false)
//
// [FetchCrate] reports the newest stable version and the normalized
// repository URL. [FetchVersion] confirms that an exact version was
// published and whether it was yanked.
//
// Responses are cached in the backend passed to [NewClient]; pass
// refresh=true to bypass it. crates.io requires a User-Agent header, which
// the client always sends.
package crates
