package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for transcription observability spans and metrics.
var (
	AttrBookID     = attribute.Key("book.id")
	AttrPageCount  = attribute.Key("book.pages")
	AttrRunStatus  = attribute.Key("transcribe.status")
	AttrPageNumber = attribute.Key("transcribe.page.number")

	AttrBlockCount   = attribute.Key("transcribe.blocks")
	AttrImageCount   = attribute.Key("transcribe.images")
	AttrPlaceholders = attribute.Key("transcribe.placeholders")
)
