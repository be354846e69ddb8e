package resp

import (
	"net/http"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/gin-gonic/gin"
)

// Envelope is the wire format of every response. Code mirrors the HTTP
// status; Creator comes from the api_creator setting.
type Envelope struct {
	Status         bool   `json:"status"`
	Code           int    `json:"code" example:"200"`
	Creator        string `json:"creator"`
	Result         any    `json:"result,omitempty"`
	RemainingLimit *int   `json:"remaining_limit,omitempty"`
	Message        string `json:"message,omitempty"`
}

func creator() string {
	name, err := op.SettingGetString(model.SettingKeyAPICreator)
	if err != nil || name == "" {
		return "JzuvGTI"
	}
	return name
}

func Success(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Envelope{
		Status:  true,
		Code:    http.StatusOK,
		Creator: creator(),
		Result:  result,
	})
}

// SuccessWithRemaining is the proxied-endpoint success shape, reporting the
// caller's remaining daily quota after this request.
func SuccessWithRemaining(c *gin.Context, result any, remaining int) {
	c.JSON(http.StatusOK, Envelope{
		Status:         true,
		Code:           http.StatusOK,
		Creator:        creator(),
		Result:         result,
		RemainingLimit: &remaining,
	})
}

func Error(c *gin.Context, code int, err string) {
	c.AbortWithStatusJSON(code, Envelope{
		Status:  false,
		Code:    code,
		Creator: creator(),
		Message: err,
	})
}

// ErrorWithRemaining reports a post-authorization failure: the quota
// increment already committed, so the remaining count is surfaced anyway.
func ErrorWithRemaining(c *gin.Context, code int, err string, remaining int) {
	c.AbortWithStatusJSON(code, Envelope{
		Status:         false,
		Code:           code,
		Creator:        creator(),
		Message:        err,
		RemainingLimit: &remaining,
	})
}
