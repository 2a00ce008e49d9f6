// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/micro"
	"github.com/coolercontrol/coolerd/pkg/log"
)

// RespondWithError sends an error response to a NATS request with proper logging.
func RespondWithError(ctx context.Context, req micro.Request, err error, details string) {
	RespondWithErrorCode(ctx, req, "500", err, details)
}

// RespondWithErrorCode is RespondWithError with an explicit error code,
// carried in the Nats-Service-Error-Code header micro.Request.Error sets
// on the reply. Proxying HTTP transports (service/transport) read that
// header back off the numeric code to choose a response status, so a
// handler that knows the failure is e.g. an authentication problem
// should use "401" here rather than the generic "500".
func RespondWithErrorCode(ctx context.Context, req micro.Request, code string, err error, details string) {
	l := log.GetGlobalLogger()

	l.ErrorContext(ctx, "Request failed",
		"subject", req.Subject(),
		"error", err,
		"details", details)

	if respErr := req.Error(code, fmt.Sprintf("%v: %s", err, details), nil); respErr != nil {
		l.ErrorContext(ctx, "Failed to send error response",
			"subject", req.Subject(),
			"error", respErr)
	}
}
