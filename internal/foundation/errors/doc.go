// Package errors provides the classified error type used for fatal build errors.
//
// Every fatal kind of a site build (invalid configuration, malformed front
// matter, missing collection data source, filesystem write failure, template
// render failure) has a convenience constructor returning an ErrorBuilder:
//
//	err := errors.FrontMatterError("malformed front matter").
//		WithCause(yamlErr).
//		WithContext("file", path).
//		Build()
//
// CLIErrorAdapter turns a classified error into a user-facing message and a
// process exit code.
package errors
