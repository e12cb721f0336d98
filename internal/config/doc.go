// Package config provides configuration for the Hydro client.
//
// Two sources are handled here. Page configuration is published by the
// server in a meta tag and read once per full page load:
//
//	<meta name="hydro-config" content='{"Antiforgery":{"HeaderName":"RequestVerificationToken","Token":"..."}}'>
//
// Client configuration is read by the hydro command from hydro.json,
// hydro.jsonc (JSON with comments) or hydro.yaml in the working
// directory:
//
//	{
//	  "baseURL": "http://localhost:5000",
//	  "bindDebounce": "10ms",
//	  "pendingDelay": "100ms",
//	  "requestTimeout": "30s",
//	  "userAgent": "hydro-go",
//	  "metrics": { "namespace": "hydro" },
//	  "snapshot": {
//	    "dir": ".hydro/snapshots",
//	    "s3": { "bucket": "my-bucket", "prefix": "snapshots/", "region": "eu-west-1" }
//	  }
//	}
//
// Durations use Go duration syntax.
package config
