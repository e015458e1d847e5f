// Package aggregates owns the transaction boundary for project and task writes.
//
// Services pass a closure to Write; everything inside it (loads, access checks,
// email resolution, inserts) runs in one transaction and either commits as a
// whole or not at all. Infrastructure errors are mapped to domain codes on the
// way out.
package aggregates
