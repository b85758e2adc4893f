// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no external side effects of their own:
// all I/O happens behind the driven ports.
package services
