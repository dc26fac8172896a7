package constraint

import (
	"fmt"

	"github.com/roach88/qom/internal/qom"
)

func invalid(format string, args ...any) error {
	return &qom.Error{Code: qom.ErrCodeInvalidArgument, Op: "constraint", Message: fmt.Sprintf(format, args...)}
}
