// Package visualflow bridges an asynchronous visual generation API to a
// set of pluggable storage backends behind a small tool surface.
//
// The package is organized into subpackages by domain:
//
//   - napkin: generation API client (submit, status, download, verify)
//   - workflow: submit/poll/wait lifecycle with timeout enforcement
//   - storage: storage destinations (filesystem, S3, Drive, Slack,
//     Notion, Telegram, webhook)
//   - config: configuration loading and validation
//   - http: shared HTTP client with retry for transient failures
//   - testutil: test utilities and a scripted fake API server
//
// The root package exposes the tool operations a caller registers with
// its own protocol layer:
//
//	cfg, _ := config.Load("")
//	svc, _ := visualflow.New(cfg)
//
//	status, err := svc.GenerateAndWait(ctx, &napkin.Request{
//	    Format:      napkin.FormatSVG,
//	    Content:     "# Roadmap\n- discovery\n- delivery",
//	    VisualQuery: "timeline",
//	}, nil)
//
// See individual package documentation for detailed usage.
package visualflow
