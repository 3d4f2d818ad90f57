// Package events carries milestone notification intents from the progress
// state machine to delivery adapters. Emission is fire-and-forget: handler
// failures are logged and never propagate back into the mutation that
// produced the intent.
package events
