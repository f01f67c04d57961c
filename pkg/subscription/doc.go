// Package subscription implements the subscription-lifecycle core: the
// canonical snapshot read, the transition legality rules, and the engine
// that carries transitions out against the backend.
//
// The legality table, with state = current plan x active x canceled:
//
//	trial      -> upgrade to monthly/quarterly/annual via checkout
//	monthly    -> upgrade to quarterly/annual, scheduled at renewal
//	quarterly  -> upgrade to annual, downgrade to monthly, scheduled at renewal
//	annual     -> downgrade to quarterly/monthly, scheduled at renewal
//
// Any change is offered only while active and not canceled; a canceled but
// still entitled account gets reactivation only. Scheduled changes require
// the user to acknowledge the deferral before anything hits the wire.
//
// Snapshots are point-in-time reads. After a mutation the UI replaces the
// snapshot wholesale from the response or re-fetches; it never patches
// fields locally.
package subscription
