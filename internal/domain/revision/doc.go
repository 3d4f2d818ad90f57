// Package revision implements the progress state machine and the fixed
// spaced-repetition schedule for subtopics.
//
// The two transition functions, CycleStatus and ToggleRevision, are pure:
// they take the current record and an explicit now, and return a new record
// plus the side-effect intents (ledger increment, milestone notification)
// the caller should dispatch after the record is persisted. They never touch
// storage or a clock themselves, which keeps the state machine deterministic
// and testable.
//
// The due-date evaluator folds over the fixed tier schedule (1, 3, 7 and 30
// days after learning) and reports records with any unmet tier past its
// threshold.
package revision
