package cli

import (
	"errors"
	"fmt"

	"reportdesk/internal/editor"
)

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

var errNothingToUpdate = errUsage("nothing to update: pass at least one of --title, --content, --content-file, --status, --tag, --summary")

// userMessage prefers the display message of editor failures over the wrapped cause.
func userMessage(err error) string {
	var ue editor.UserError
	if errors.As(err, &ue) {
		return ue.Msg
	}
	return err.Error()
}
