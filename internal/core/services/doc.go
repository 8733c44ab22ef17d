// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The scoring, sentiment and alert rules are pure functions over domain
// types. Everything with side effects goes through a driven port.
package services
