// Package sender provides delivery of note record batches to a remote store.
//
// This package implements multipart form upload of exported note batches
// to an ingestion service. It supports custom HTTP clients for testing and
// alternative transport mechanisms.
//
// # Usage
//
// Create an HTTP sender:
//
//	s := sender.NewHTTPSender(httpClient, logger)
//
//	md := sender.Metadata{
//	    Hostname:   "worker-1",
//	    AuthKey:    "api-key",
//	    ServiceURL: "https://api.example.com",
//	}
//
//	if err := s.Deliver(ctx, batch, md); err != nil {
//	    return err
//	}
//
// # Custom Sinks
//
// Implement the Sink interface to deliver to alternative destinations
// (e.g., a local spool database, S3, files).
package sender
