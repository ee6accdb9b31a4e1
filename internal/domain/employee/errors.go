package employee

import "errors"

var (
	ErrTemplateNotFound = errors.New("mail template not found")
	ErrUserNotFound     = errors.New("user not found")
)
