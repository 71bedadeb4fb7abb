package apperr

import "errors"

var ErrParse = errors.New("invalid frontmatter syntax")
