// Package telemetry holds the Prometheus collectors and the OpenTelemetry
// tracer shared by the component manager and the acceleration bridge.
//
// Metrics collected:
//   - eghact_renders_total: render passes by component and phase
//   - eghact_render_duration_seconds: render pass duration by phase
//   - eghact_patches_applied_total: applied patches by kind
//   - eghact_mounted_instances: currently mounted component instances
//   - eghact_lifecycle_warnings_total: ignored lifecycle calls by error code
//   - eghact_bridge_calls_total: bridge calls by backend and operation
//   - eghact_bridge_fallbacks_total: per-call fallbacks to software
//   - eghact_bridge_call_duration_seconds: bridge call duration
//
// Spans use the global tracer provider. Configure it before bootstrapping
// an app to export them.
package telemetry
