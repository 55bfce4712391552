// Package checker turns tracked state and page signals into findings.
//
// Architecture overview:
//
//   - Header rules (EvaluateHeaders) inspect the main frame snapshot of a target:
//     transport scheme plus response security headers.
//   - Content rules (EvaluateSignals) inspect collector signals, never the raw DOM,
//     so a new rule over an existing signal kind does not touch the collector.
//   - Both tables are ordered slices of rules with distinct IDs. Each rule is
//     evaluated independently; ordering only fixes the pre-normalization output.
//   - Extended rules are off unless Options.Extended is set, keeping the base
//     tables stable for callers that compare against a fixed rule set.
//
// Evaluators are pure functions. Ranking and deduplication happen in
// finding.Normalize after both evaluators ran.
package checker
