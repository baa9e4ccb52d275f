package locker

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/binary"
)

const (
	EventLogAccountSize = (32 + // amount
		DestinationChainAddressLength) // recipient
)

// EventLogAccount holds the most recent LockAndMint or BurnAndRelease event.
// Each event overwrites the previous one, so observers must watch every
// write rather than read history back from the account.
type EventLogAccount struct {
	// Amount in the destination chain's precision
	Amount    *uint256.Int
	Recipient DestinationChainAddress
}

func (obj *EventLogAccount) Marshal() []byte {
	data := make([]byte, EventLogAccountSize)

	var offset int

	binary.PutUint256BE(data[offset:], obj.Amount, &offset)
	putDestinationChainAddress(data, obj.Recipient, &offset)

	return data
}

func (obj *EventLogAccount) Unmarshal(data []byte) error {
	if len(data) != EventLogAccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int

	binary.GetUint256BE(data[offset:], &obj.Amount, &offset)
	getDestinationChainAddress(data, &obj.Recipient, &offset)

	return nil
}

func (obj *EventLogAccount) String() string {
	amount := "0"
	if obj.Amount != nil {
		amount = obj.Amount.Dec()
	}

	return fmt.Sprintf(
		"EventLogAccount{amount=%s,recipient=%s}",
		amount,
		obj.Recipient.String(),
	)
}
