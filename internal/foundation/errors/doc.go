// Package errors provides foundational, type-safe error primitives used across sitebuilder.
//
// Component packages raise their own typed errors (front matter, layout,
// template, permalink, filesystem). The site orchestrator wraps them in a
// ClassifiedError carrying a category, a severity and context (source path,
// stage) so the CLI can report what failed and pick an exit code.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryLayout, "layout resolution failed").
//		WithContext("path", "index.md").
//		WithContext("stage", "layout").
//		Build()
package errors
