// Package folio is the backend core of a personal e-book reading application.
//
// Its centerpiece is PDF transcription: converting a vector PDF into
// structured, reflowable page content (headings, paragraphs, and images
// with a stable reading order) so the reader can render text-based pages,
// run full-text search, and feed text-to-speech instead of showing only
// rasterized page images.
//
// # Quick Start
//
// Transcribe a PDF into per-page content and persist it:
//
//	doc, err := pdfdoc.Open(pdfBytes)
//	if err != nil {
//		// document-level failure: corrupt or unsupported file
//	}
//	defer doc.Close()
//
//	sink := blob.NewLocalStore("covers/")
//	tr := transcribe.New(sink,
//		transcribe.WithProgress(func(p folio.TranscriptionProgress) {
//			log.Printf("page %d/%d", p.CurrentPage, p.TotalPages)
//		}),
//	)
//	pages, err := tr.Transcribe(ctx, doc, bookID)
//
//	store := sqlite.New("folio.db")
//	_ = store.Init(ctx)
//	_ = store.SavePages(ctx, bookID, pages)
//
// # Packages
//
// The root package defines the content data model ([ContentBlock],
// [PageContent], [BookContent], [TranscriptionProgress]) shared by all
// components:
//
//   - transcribe: the transcription pipeline (text reconstruction, image
//     extraction, page assembly, orchestration, search/word count)
//   - transcribe/pdfdoc: the PDF document accessor
//   - blob: local image sink for extracted page images
//   - store/sqlite, store/postgres: library persistence with full-text search
//   - export: markdown/HTML rendering of transcribed pages
//   - webarticle: read-later import of web articles into page content
//   - observer: OTEL instrumentation for transcription runs
//
// See cmd/folio for the reference CLI.
package folio
