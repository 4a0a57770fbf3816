// Package gen generates Go model structs for the models of a configured
// relm registry.
//
// The pipeline follows this flow:
//
//	relm.Interface schemas (Go or YAML)
//	        ↓
//	   relm.Registry (declare, configure)
//	        ↓
//	   Graph (models, fields, edges, association tables)
//	        ↓
//	   Generator (Jennifer files, parallel writer)
//	        ↓
//	   {target}/{model}.go, {target}/tables.go
//
// Foreign keys synthesized by relationships become struct fields next to
// the declared properties, and every relationship, including backrefs,
// becomes an edge field holding the related models.
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./models"),
//	    gen.WithWorkers(4),
//	)
//	graph, err := gen.NewGraph(cfg, reg)
//	changed, err := gen.Generate(ctx, graph)
//
// The package name is inferred from the base of the target directory.
// Override it with WithPackage when the directory is not a valid
// identifier.
//
// # Snapshots
//
// Each generation records the msgpack encoded graph in SnapshotFile.
// Generate skips the writer when the recorded snapshot matches the graph.
//
// # Error Handling
//
//   - SchemaError: the registry cannot be rendered
//   - ConfigError: invalid options
//   - GenerationError: rendering or writing a file failed
package gen
