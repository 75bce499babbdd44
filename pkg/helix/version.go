// Package helix carries module-level metadata for the Helix kernel.
package helix

// Version is the Helix release version, set at tag time.
const Version = "0.1.0"
