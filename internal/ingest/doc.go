// Package ingest implements the image ingestion pipeline.
//
// A Pipeline takes a batch of raw files and produces one domain.ProcessedImage
// per file, in input order. For each file it decodes the payload, optionally
// preprocesses it, recognizes text with an OCR engine, normalizes the
// transcript and stores the original bytes as a data URI.
//
// # Engine Scope
//
// One engine is acquired per batch (or one per worker when Options.Workers
// is above 1) and closed exactly once on every exit path. An empty batch
// acquires nothing.
//
// # Failure Semantics
//
// The first failing file fails the whole batch; no partial results are
// returned and nothing is retried. Failures are *Error values whose Kind is
// one of KindEngineAcquisition, KindRecognition or KindMalformedInput, and
// which match ErrEngineAcquisition, ErrRecognition or ErrMalformedInput
// under errors.Is.
//
// Duplicate detection is the caller's responsibility. The pipeline never
// inspects or mutates an existing collection.
//
// # Progress
//
// The optional ProgressFunc sees 0 before acquisition, 10 once engines are
// ready, values spread over 10-90 around each file, and a final 100 on both
// success and failure. Values never decrease.
package ingest
