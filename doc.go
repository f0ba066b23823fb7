// Package account manages customer credentials for a storefront: login,
// password changes, confirmation based activation and password reset
// tokens, backed by Bun repositories.
//
// Activation lifecycle:
//   - Customers are either active or pending_confirmation. A pending
//     customer carries a confirmation key and becomes active once the key
//     is presented. ActivationStateMachine owns the transition graph and
//     persists it with a conditional update, so a key is accepted once.
//
// Reset tokens:
//   - InitiatePasswordReset stores an opaque token and its issue time on
//     the customer. ValidateResetPasswordLinkToken and ResetPassword check
//     it against the configured TTL. A token resolved without a customer
//     id must belong to exactly one customer, otherwise it is reported as
//     expired. A redeemed token is cleared in the same update that stores
//     the new password hash.
//
// Sessions:
//   - The manager commands a SessionStore. ChangePassword rotates the
//     caller's session and drops the others, ResetPassword drops all of
//     them.
//
// Activity sinks:
//   - ActivitySink receives login, password and activation events. Sinks
//     run best-effort (errors are logged). MetricsSink counts them in
//     prometheus.
package account
