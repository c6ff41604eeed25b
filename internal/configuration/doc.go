// Package configuration is the engine facade: it builds the property store
// from a Loader and ordered overlays, binds settings onto application types,
// and assembles the client-facing configuration snapshot.
package configuration
