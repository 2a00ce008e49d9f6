// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DeriveUID computes a stable device UID as a SHA2 fingerprint over a
// device-type-specific identity tuple. The tuple must contain only
// values that survive reboots and sensor reordering (bus path, model
// string, serial number) and must never include a value that changes
// across restarts (e.g. the hwmonN index, which the kernel reassigns
// freely).
func DeriveUID(typ Type, identity ...string) string {
	h := sha256.New()
	h.Write([]byte(typ))
	for _, part := range identity {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	sum := h.Sum(nil)
	return fmt.Sprintf("%s-%s", typ, hex.EncodeToString(sum[:8]))
}

// ChannelKey identifies one channel on one device, used as the key
// into the sibling settings map so device records never carry
// back-pointers into channel state.
type ChannelKey struct {
	UID     string
	Channel string
}

func (k ChannelKey) String() string {
	return strings.Join([]string{k.UID, k.Channel}, "/")
}
