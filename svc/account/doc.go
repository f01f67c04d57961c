// Package account implements the sign-in and account-recovery flows of the
// portal: admin and superadmin login, invite-token registration, and the
// forgot/reset password pair. It is a thin orchestration layer over the API
// client and the session manager; all error outcomes are sentinel errors the
// screens render directly.
package account
