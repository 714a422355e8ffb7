package types

// Version is the canonical snapclone version.
// The CLI, the run report and notification payloads all carry this value.
const Version = "0.3.0"

// ReportVersion is the schema version of the run report and the
// completion notification payload. It moves in lockstep with Version.
const ReportVersion = Version
