// Package artifact provides an in-process store for the binary outputs of a
// generation run: the per-layer images written as steps complete and the
// final assembled deliverable. Data is copied on save and retrieval to avoid
// accidental external mutation of internal buffers.
package artifact
