// Package learn implements the learners that own a robot controller.
//
// Offline passes the controller through untouched. Online runs an ask/tell
// [Strategy] over the controller's parameter vector: every evaluation window
// it scores the current candidate with the evaluator, reports it, and loads
// the next candidate. When the budget is spent the best candidate found is
// loaded and kept.
package learn
