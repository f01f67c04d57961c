// Package reporting reads the superadmin operator reports: the tenant
// dashboard (every admin with plan, price, and next billing date) and the
// revenue analytics series aggregated by day, week, or month.
package reporting
