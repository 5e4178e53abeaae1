package editor

import "errors"

// ErrAborted signals the user left the editor without committing, either
// through the quit action or an interrupt (Ctrl+C).
var ErrAborted = errors.New("editor: aborted")
