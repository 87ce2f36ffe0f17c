package tracing

// Span attribute keys recorded on relocation spans.
const (
	AttrDescriptor = "migration.descriptor"
	AttrTarget     = "migration.target"
	AttrState      = "migration.state"
	AttrCode       = "migration.code"
	AttrWarnings   = "migration.warnings"

	AttrNodeCount  = "graph.nodes"
	AttrCopied     = "graph.copied"
	AttrLost       = "graph.lost"
	AttrExcluded   = "graph.excluded"
	AttrNodeKind   = "node.kind"
	AttrNodeSource = "node.source"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanRun         = "migration.run"
	SpanStatePrefix = "migration."
	SpanDiscover    = "vivado.discover"
	SpanRelocate    = "vivado.relocate"
	SpanRewrite     = "vivado.rewrite"
)

// Event names.
const (
	EventNodeLost         = "node.lost"
	EventPathTooLong      = "node.path_too_long"
	EventArchiveExtracted = "archive.extracted"
	EventTargetOccupied   = "node.target_occupied"
)
