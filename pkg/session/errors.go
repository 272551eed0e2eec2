package session

var (
	ErrOutOfCanvas   = &sessionError{"click is outside the canvas"}
	ErrNotCalibrated = &sessionError{"reference points are not all set"}
	ErrPromptClosed  = &sessionError{"coordinate prompt is not open"}
	ErrDragReleased  = &sessionError{"drag has already been released"}
)

type sessionError struct{ msg string }

func (e *sessionError) Error() string { return e.msg }
