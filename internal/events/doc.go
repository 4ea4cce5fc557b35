// Package events provides types and interfaces for an event-driven architecture.
//
// The review service publishes ReviewEvents after each committed review;
// other subsystems (analytics, notifications) subscribe by registering an
// EventHandler with the emitter. Delivery is synchronous and in-process.
package events
