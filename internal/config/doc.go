// Package config loads the engine configuration.
//
// The configuration lives in eghact.yaml (or eghact.yml / eghact.json) at the
// project root. Every key can be overridden from the environment with the
// EGHACT_ prefix, dots replaced by underscores:
//
//	EGHACT_DEBUG=true
//	EGHACT_BRIDGE_ENABLED=true
//	EGHACT_BRIDGE_MODULE_PATH=./build/eghact_core.wasm
//	EGHACT_DEVTOOLS_ADDR=:7070
//	EGHACT_LOG_LEVEL=debug
//
// # Configuration File Structure
//
//	debug: false
//	bridge:
//	  enabled: true
//	  module_path: build/eghact_core.wasm
//	devtools:
//	  enabled: true
//	  addr: localhost:7070
//	log:
//	  level: info
//	  format: text
//
// A relative module path is resolved against the configuration file's
// directory.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//
//	logger := cfg.Logger(os.Stderr)
//	backend := bridge.Init(ctx, cfg.BridgeConfig(), logger)
package config
