// Package billing holds the page-level controllers behind the billing
// screens: the settings page (status, cancel), the plan-change page
// (acknowledgment-gated schedule at renewal), and the reactivation page
// (preview, plan picker, start). Controllers own the screen state and keep
// the subscription snapshot authoritative: failed mutations surface an
// inline error and leave the displayed snapshot untouched; successful ones
// replace it wholesale.
package billing
