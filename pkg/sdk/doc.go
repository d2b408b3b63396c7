// Package sdk embeds the mediadex search engine in-process, without the HTTP
// layer. One client fans a query out to the configured catalog upstreams,
// scores and deduplicates the candidates, and caches results.
//
//	client, _ := sdk.New(
//	    sdk.WithCatalog(sdk.CatalogFilm, sdk.CatalogUpstream{
//	        BaseURL: "https://api.themoviedb.org/3",
//	        APIKey:  os.Getenv("TMDB_API_KEY"),
//	    }),
//	    sdk.WithCacheTTL(5*time.Minute),
//	)
//	defer client.Close()
//
//	resp, _ := client.Search(ctx, "dune", sdk.Limit(10))
//	for _, item := range resp.Results {
//	    fmt.Println(item.Catalog, item.Title, item.Score)
//	}
package sdk
