// Package docbind maps a parsed configuration document onto typed Go structs.
//
// A document arrives as a node.Node tree (see source/yaml and source/json).
// The destination type declares which fields are mapped, under which key and
// whether they are required, either with struct tags or explicitly through
// NewSchema / the dsl package:
//
//	type Server struct {
//	    Name  string            `docbind:"name,required"`
//	    Port  int               `docbind:"port"`
//	    Tags  []string          `docbind:"tags"`
//	    Env   map[string]string `docbind:"env"`
//	    TLS   TLS               `docbind:"tls"`
//	    Proxy *string           `docbind:"proxy"`
//	}
//
//	root, err := yaml.Parse(data)
//	srv, ok := docbind.Map[Server](root, docbind.Options{Reporter: diag.NewSlogReporter(logger)})
//
// Design policy:
//   - Mapping never returns an error value: recoverable problems go to the
//     diag.Reporter and fold into the single ok flag. The record built so far
//     is always returned.
//   - Schema problems (unsupported field types, shadowed keys) are reported
//     once per type by SchemaOf and are programming errors for Map.
//   - Required-ness means the key was present; a present key whose value
//     fails to convert yields only the conversion error.
//   - By default the first failure at a mapping level skips the remaining
//     entries of that level (StopOnError); ContinueOnError reports them all.
//   - Every field commits what it converted, independent of failures in
//     sibling fields; a collection or record that fails midway keeps the
//     part built before the failure.
package docbind
