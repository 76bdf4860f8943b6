// Package bridge selects the implementation of the engine's hot paths:
// tree diffing, static template compilation and effect ordering.
//
// Two backends implement Backend. Software runs everything in Go. Wasm
// hosts an accelerated WebAssembly module through wazero; values cross the
// boundary as pkg/protocol encodings written into guest memory.
//
// # Guest ABI
//
// The guest module exports its linear memory as "memory" and these
// functions:
//
//	alloc(size i32) i32
//	free(ptr i32, size i32)
//	diff_trees(ptr i32, len i32) i64
//	compile_template(ptr i32, len i32) i64
//	compute_effect_ordering(ptr i32, len i32) i64
//
// Each call receives an input buffer allocated with alloc and returns the
// result location packed as ptr<<32 | len. A zero pointer reports failure.
// The host frees both buffers.
//
//	diff_trees               frame(tree prev) frame(tree next) -> frame(patch refs)
//	compile_template         string markup -> tree
//	compute_effect_ordering  count ids... -> count ids...
//
// # Fallback
//
// Init never fails. When the module cannot be loaded it logs E030 and
// returns the software backend. When a single accelerated call fails the
// Wasm backend logs E031 and serves that call in software.
//
//	backend := bridge.Init(ctx, cfg.Bridge, logger)
//	defer backend.Close(ctx)
//
//	mgr := component.NewManager(nil, component.WithDiffer(backend))
//	queue := reactive.NewQueue(reactive.WithOrderer(bridge.Orderer(backend)))
package bridge
