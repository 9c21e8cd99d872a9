// Package napkin provides a client for the Napkin visual generation API.
//
// Generation is asynchronous: Submit returns a request ID, GetStatus polls
// it until a terminal status (completed or failed), and DownloadFile fetches
// the bytes of a generated file. Transient failures (429, 5xx, network
// errors) are retried with exponential backoff by the underlying client.
//
// Core types:
//   - Request: the full parameter set describing what visual to produce
//   - StatusResponse: point-in-time snapshot of a generation request
//   - GeneratedFile: one produced file with its download URL and metadata
//
// Example usage:
//
//	client, err := napkin.NewClient(napkin.ClientConfig{APIKey: key})
//	sub, err := client.Submit(ctx, &napkin.Request{
//	    Format:  napkin.FormatSVG,
//	    Content: "# Plan\n- research\n- build",
//	})
//	status, err := client.GetStatus(ctx, sub.ID)
package napkin
