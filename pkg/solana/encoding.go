package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/locker-bridge/pkg/solana/shortvec"
)

var errVersionedMessage = errors.New("versioned messages not supported")

// Marshal returns the wire encoding of the transaction: the compact array of
// signatures followed by the message.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}
	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	if len(b) > MaxTransactionSize {
		return ErrTransactionTooLarge
	}

	buf := bytes.NewBuffer(b)

	count, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	signatures := make([]Signature, count)
	for i := range signatures {
		if _, err := io.ReadFull(buf, signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	var m Message
	if err := m.Unmarshal(buf.Bytes()); err != nil {
		return err
	}

	t.Signatures = signatures
	t.Message = m
	return nil
}

// Marshal returns the bytes that signers sign.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = b.Write([]byte{
		m.Header.NumSignatures,
		m.Header.NumReadonlySigned,
		m.Header.NumReadOnly,
	})

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	_, _ = b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, ix := range m.Instructions {
		_ = b.WriteByte(ix.ProgramIndex)
		writeCompactBytes(b, ix.Accounts)
		writeCompactBytes(b, ix.Data)
	}

	return b.Bytes()
}

// Unmarshal decodes a legacy message. Versioned messages, which set the high
// bit of the first byte, are rejected, as are instructions that index past
// the account list. On error m is left unchanged.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) > 0 && b[0]&0x80 != 0 {
		return errVersionedMessage
	}

	buf := bytes.NewBuffer(b)

	var decoded Message

	var header [3]byte
	if _, err := io.ReadFull(buf, header[:]); err != nil {
		return errors.Wrap(err, "failed to read message header")
	}
	decoded.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	count, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	decoded.Accounts = make([]ed25519.PublicKey, count)
	for i := range decoded.Accounts {
		decoded.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if _, err := io.ReadFull(buf, decoded.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err := io.ReadFull(buf, decoded.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	count, err = shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	decoded.Instructions = make([]CompiledInstruction, count)
	for i := range decoded.Instructions {
		ix := &decoded.Instructions[i]

		if ix.ProgramIndex, err = buf.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d program", i)
		}
		if ix.Accounts, err = readCompactBytes(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d accounts", i)
		}
		if ix.Data, err = readCompactBytes(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d data", i)
		}

		for _, index := range append([]byte{ix.ProgramIndex}, ix.Accounts...) {
			if int(index) >= len(decoded.Accounts) {
				return errors.Wrapf(ErrInvalidAccountIndex, "instruction %d references account %d", i, index)
			}
		}
	}

	*m = decoded
	return nil
}

func writeCompactBytes(b *bytes.Buffer, data []byte) {
	_, _ = shortvec.EncodeLen(b, len(data))
	_, _ = b.Write(data)
}

func readCompactBytes(buf *bytes.Buffer) ([]byte, error) {
	n, err := shortvec.DecodeLen(buf)
	if err != nil {
		return nil, err
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, err
	}
	return data, nil
}
