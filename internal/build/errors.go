package build

import "errors"

// ErrBuildInProgress is returned when a build is requested while another one
// runs on the same Builder.
var ErrBuildInProgress = errors.New("pagesmith: build already in progress")
