// Package opensky implements the telemetry fetcher for the OpenSky Network
// API: an OAuth2 client-credentials token exchange followed by a bearer-
// authenticated query of live state vectors for the tracked transponder set.
package opensky
