package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/curatenet/tcr/lib/errors"
)

// Problem is an RFC 7807 problem document; coded protocol errors carry their
// code and data through it.
type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Code     uint                   `json:"code,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{Type: "about:blank", Status: status, Title: http.StatusText(status)}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

func NewErrorProblem(err error, status int) Problem {
	p := NewStatusProblem(status)
	p.Detail = err.Error()

	if e, ok := err.(*errors.Error); ok {
		p.Code = e.Code
		p.Detail = e.Message
		p.Data = e.Data
	}

	return p
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) Serialize() ([]byte, error) {
	return json.Marshal(p)
}
