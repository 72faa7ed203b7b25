package auth

import "errors"

// ErrPromptFailed wraps failures of the interactive credential prompt.
var ErrPromptFailed = errors.New("credential prompt failed")
