package locker

import (
	"github.com/mr-tron/base58"
)

// DestinationChainAddressLength is the width of an address on the
// destination chain, as carried in instructions and event logs.
const DestinationChainAddressLength = 25

// DestinationChainAddress is an opaque address on the destination chain.
type DestinationChainAddress [DestinationChainAddressLength]byte

func (a DestinationChainAddress) String() string {
	return base58.Encode(a[:])
}

func putDestinationChainAddress(dst []byte, v DestinationChainAddress, offset *int) {
	copy(dst[*offset:], v[:])
	*offset += DestinationChainAddressLength
}
func getDestinationChainAddress(src []byte, dst *DestinationChainAddress, offset *int) {
	copy(dst[:], src[*offset:])
	*offset += DestinationChainAddressLength
}
