// Package ottomatch provides a Go client for the ottomatch vehicle
// search service HTTP API.
//
// The client wraps the three public endpoints: hybrid search, similar
// vehicles, and health.
//
//	client, _ := ottomatch.New("https://search.example.com",
//	    ottomatch.WithToken(os.Getenv("OTTOMATCH_API_KEY")),
//	)
//
//	resp, err := client.Search(ctx, ottomatch.SearchRequest{
//	    Query:   "reliable truck for towing under 30k",
//	    Filters: map[string]any{"make": "Toyota", "price_max": 30000},
//	    Limit:   10,
//	})
//
//	similar, err := client.Similar(ctx, "veh-123", 5)
//
// Server-side errors are returned as *APIError; check the Code field
// against the Code* constants to branch on the failure kind.
package ottomatch
