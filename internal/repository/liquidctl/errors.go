// SPDX-License-Identifier: BSD-3-Clause

package liquidctl

import "errors"

var (
	// ErrHelperUnreachable indicates the liquidctl helper socket could
	// not be dialed or returned a transport-level error.
	ErrHelperUnreachable = errors.New("liquidctl helper unreachable")
	// ErrHelperResponse indicates the helper returned a malformed or
	// unexpected JSON body.
	ErrHelperResponse = errors.New("liquidctl helper response error")
)
