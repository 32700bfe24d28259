// Package mongodb implements the catalog repository on MongoDB using the
// official driver v2.
//
// Client initialization includes application-level connect retry tuned for
// managed deployments (Atlas cold starts, brief network hiccups) and a
// health check suitable for HTTP probes. Configuration comes from
// environment variables via the Config struct.
//
// Record ids are MongoDB ObjectIDs rendered as hex strings at the package
// boundary; the domain never sees BSON types.
package mongodb
