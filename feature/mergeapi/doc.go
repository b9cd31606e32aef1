// Package mergeapi exposes the merge engine over HTTP.
//
// It provides a single endpoint, POST /merge/:table, that stages a candidate
// batch and reconciles it into the named table under one of three conflict
// policies:
//
//   - replace: batch rows fully overwrite existing rows with the same key
//   - ignore: batch rows whose key already exists are skipped
//   - merge: only the listed columns of conflicting rows are overwritten
//
// The candidate batch is supplied inline in the request body or fetched as a
// JSON object from the configured storage bucket.
//
// # Components
//
//   - Service: discovers the target table schema and dispatches to the engine.
//   - Handler: Fiber routes, request decoding and error mapping.
//   - Feature: loader integration, disabled when no database is connected.
package mergeapi
