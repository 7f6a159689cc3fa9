// Package build orchestrates a site build.
//
// A Builder runs named stages in order (prepare_output, copy_static,
// load_data, aggregate_pages, build_pages, sitemap, write_manifest) and stops
// at the first fatal error. Every page job, including collection items and
// ad-hoc pages, goes through CreatePage, which records a manifest entry,
// composes the page into its layout, renders it and writes it below the
// output root.
//
// BuildStatic and BuildPages run the static and page halves on their own for
// the preview watcher.
package build
