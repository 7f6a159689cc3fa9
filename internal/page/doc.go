// Package page discovers page source files and resolves their metadata,
// destination path and URL.
//
// Metadata starts from a SiteDefaults snapshot computed once per build.
// Front matter is merged onto a fresh deep copy for every page so that no
// page can observe another page's edits.
package page
