package types

// Version is the canonical project version. The CLI and the run report
// schema share this constant (lockstep versioning).
const Version = "0.2.0"
