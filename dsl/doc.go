// Package dsl declares docbind schemas in code instead of struct tags.
//
// Record[T]() starts a typed builder. Field registers a Go struct field under
// a document key, Required/Optional set its required flag and Nested swaps
// the schema of a nested record. Build validates the declarations the same
// way tag derivation does and returns a *docbind.Schema for T:
//
//	s := dsl.Record[Server]().
//	    Field("Name", "name").Required().
//	    Field("Port", "port").
//	    Field("TLS", "tls").Nested(tlsSchema).
//	    MustBuild()
//	srv, ok := docbind.MapWith[Server](s, root)
//
// Fields not mentioned are never mapped, tagged or not.
package dsl
