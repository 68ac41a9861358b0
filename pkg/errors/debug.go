package errors

import (
	"errors"
	"fmt"
)

// UpstreamReporter is implemented by errors originating from the commerce
// backend API so request logs can carry the upstream status and endpoint.
type UpstreamReporter interface {
	error
	HTTPStatus() int
	Endpoint() string
	UpstreamMessage() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
	UpstreamMessage  string `json:"upstream_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream UpstreamReporter
	if errors.As(err, &upstream) {
		d.UpstreamStatus = upstream.HTTPStatus()
		d.UpstreamEndpoint = upstream.Endpoint()
		d.UpstreamMessage = upstream.UpstreamMessage()
	}

	return d
}
