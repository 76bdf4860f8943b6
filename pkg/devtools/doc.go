// Package devtools serves a live inspector for a running app.
//
// Routes:
//
//	GET /tree       serialized render target (text/html)
//	GET /instances  mounted component instances (JSON)
//	GET /stats      acceleration bridge counters (JSON)
//	GET /metrics    prometheus exposition
//	GET /ws         patch feed
//
// The patch feed sends one binary websocket message per patched render
// pass: the instance id as a uvarint, the component name as a string and
// the patches as written by protocol.EncodePatches. Use DecodeFrame to read
// it back.
//
//	srv := devtools.NewServer(app, devtools.WithBackend(backend))
//	defer srv.Close()
//	go srv.ListenAndServe(ctx, cfg.Devtools.Addr)
package devtools
