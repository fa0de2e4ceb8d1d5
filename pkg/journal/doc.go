// Package journal persists mint attempts so that unresolved and unknown
// outcomes survive restarts and can be reconciled.
package journal
