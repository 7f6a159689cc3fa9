// Package preview serves a built site locally and rebuilds it when project
// files change.
//
// Changes below static/ recopy static files only; changes to pages,
// templates, content or data rebuild every page. Events are debounced and
// handled by a single worker, so builds never overlap and requests that
// arrive during a build coalesce into one follow-up build.
package preview
