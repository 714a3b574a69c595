// Package civdoc provides ingestion, embedding, and retrieval of municipal
// web content for a question-answering chat interface. It crawls a fixed set
// of known sources (site posts, a business directory, an events feed, tax
// documents, scanned attachments), normalizes them into documents, computes
// vector embeddings, and serves nearest-neighbor retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, openai/, ocr/).
package civdoc
