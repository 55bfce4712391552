// Package constants centralizes defaults shared across the CLI and the audit core.
//
// Keeping limits and timeouts in one place lets cmd/ and internal/ reference the
// same values without introducing import cycles.
package constants
