// Package stylecache memoizes registered styles.
//
// A Cache turns raw style descriptors into render-ready handles, registering
// each distinct normalized style and theme pair at most once per process:
//
//	c, err := stylecache.New(sheet,
//		stylecache.WithPlatform(style.StaticPlatform(style.PlatformIOS)),
//		stylecache.WithStore(store),
//	)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	res, err := c.GetStyle(style.Describe([]any{base, overrides}), "dark")
//
// Lookups go through an in-memory LRU of handles first, then an optional
// durable store of normalized styles that survives restarts. Handles are
// never persisted; a durable hit re-registers the stored style.
package stylecache
