// Package billing provides domain models for payment tracking and the
// idempotency ledger.
//
// This package implements the billing bounded context, which is responsible for:
//   - Recording every inbound payment event exactly once (the payment_events ledger)
//   - Driving project payment status transitions (UNPAID, PAID, REFUNDED)
//   - Keeping invoices aligned with the payments that settle them
//
// Key Aggregates:
//   - PaymentEvent: Immutable ledger entry keyed by (provider, external_id)
//   - Invoice: Billing document tied to a project
//
// The ledger insert is the serialization point for duplicate webhook
// deliveries: two concurrent deliveries of the same event race on the
// unique index, and exactly one wins.
//
// The billing domain integrates with:
//   - Project domain: payment status lives on the project aggregate
//   - Delivery domain: artifact gating reads the payment status
package billing
