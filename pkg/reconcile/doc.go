// Package reconcile resolves journaled mints whose token id was never
// recovered, either because the state diff was inconclusive or because the
// wait for finality was interrupted.
package reconcile
