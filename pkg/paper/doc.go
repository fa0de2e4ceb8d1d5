// Package paper maps mint outcomes and verification onto the paper record
// kept by the surrounding storage layer.
package paper
