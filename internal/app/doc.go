// Package app composes the studio platform into a running application.
//
// It wires domain services (projects, founders, team, users) to their
// storage backends, owns the session controller, and manages service
// lifecycle through the system manager. Business rules live in
// internal/app/services; this package only assembles and starts them.
//
//	internal/app/
//	├── application.go      # Application struct, wiring, lifecycle
//	├── domain/             # Domain models (pure data structures)
//	├── storage/            # Store interfaces plus memory, docstore and postgres backends
//	├── services/           # Business logic per resource
//	├── session/            # Session state, hydration and persistence
//	├── interaction/        # Drag-to-confirm and confirm-modal state machines
//	├── httpapi/            # HTTP handlers and routing
//	├── system/             # Lifecycle manager
//	└── metrics/            # Prometheus collectors
package app
