// Package app composes the inventory backend.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Store, hub and HTTP surface wiring
//	├── domain/item/        # Item model, create input, partial patch, filter
//	├── storage/            # ItemStore interface
//	│   └── memory/         # Mutex-guarded in-memory store
//	├── httpapi/            # REST routes for /items, /health, /metrics, /ws
//	├── realtime/           # Change events and the websocket fan-out hub
//	├── metrics/            # Prometheus collectors
//	└── runtime/            # HTTP server lifecycle
//
// Every successful mutation is committed to the store first and then
// published to the hub, which forwards it to each connected viewer.
package app
