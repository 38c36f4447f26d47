// internal/common/errors/respond.go
package errors

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON envelope written for failed API requests.
type ErrorBody struct {
	Error struct {
		Code    ErrorCode              `json:"code"`
		Message string                 `json:"message"`
		Details string                 `json:"details,omitempty"`
		Meta    map[string]interface{} `json:"metadata,omitempty"`
	} `json:"error"`
}

// Respond writes err as a JSON error response and aborts the gin chain.
func Respond(c *gin.Context, err error) {
	stdErr := Normalize(err)

	var body ErrorBody
	body.Error.Code = stdErr.Code
	body.Error.Message = stdErr.Message
	body.Error.Details = stdErr.Details
	body.Error.Meta = stdErr.Metadata

	_ = c.Error(err)
	c.AbortWithStatusJSON(HTTPStatus(stdErr.Code), body)
}
