package types

// Version is the canonical project version.
// The CLI, the journal encoding and the batch-completed event all report it.
const Version = "1.1.0"

// EventContractVersion is the version of the batch-completed event payload
// published by adapters. Bumped only when the payload shape changes.
const EventContractVersion = "1.0.0"
