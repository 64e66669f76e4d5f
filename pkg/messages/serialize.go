package messages

import (
	"bytes"
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// Field slots of the Message table.
const (
	messageSlotUserID = iota
	messageSlotType
	messageSlotPayload
	messageSlotCount
)

// ErrMessageTooLarge is returned when a message exceeds MaxMessageSize.
var ErrMessageTooLarge = errors.New("message too large")

// decoder is shared by all connections. DecodeAll is safe for concurrent use
// and the memory limit caps what a small frame can expand to.
var decoder, _ = zstd.NewReader(nil,
	zstd.WithDecoderConcurrency(0),
	zstd.WithDecoderMaxMemory(MaxMessageSize),
)

func SerializeMessage(m *Message) ([]byte, error) {
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	if len(b) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress message: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, ErrMessageTooLarge
		}
		return nil, fmt.Errorf("failed to decompress message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return message, nil
}

func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil")
	}
	builder := flatbuffers.NewBuilder(len(m.Payload) + 64)

	userID := builder.CreateString(m.UserID)
	payload := builder.CreateByteVector(m.Payload)

	builder.StartObject(messageSlotCount)
	builder.PrependUOffsetTSlot(messageSlotPayload, payload, 0)
	builder.PrependUOffsetTSlot(messageSlotUserID, userID, 0)
	builder.PrependByteSlot(messageSlotType, byte(m.Type), 0)
	messageOffset := builder.EndObject()
	builder.Finish(messageOffset)

	return builder.FinishedBytes(), nil
}

func DeserializeMessageFlatbuffer(b []byte) (m *Message, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(b))
	}
	// malformed buffers make the table accessors index out of range
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("malformed message buffer: %v", r)
		}
	}()

	tab := &flatbuffers.Table{
		Bytes: b,
		Pos:   flatbuffers.GetUOffsetT(b),
	}

	message := &Message{}
	if o := flatbuffers.UOffsetT(tab.Offset(slotOffset(messageSlotUserID))); o != 0 {
		message.UserID = tab.String(o + tab.Pos)
	}
	if o := flatbuffers.UOffsetT(tab.Offset(slotOffset(messageSlotType))); o != 0 {
		message.Type = MessageType(tab.GetByte(o + tab.Pos))
	}
	if o := flatbuffers.UOffsetT(tab.Offset(slotOffset(messageSlotPayload))); o != 0 {
		payload := tab.ByteVector(o + tab.Pos)
		message.Payload = append([]byte(nil), payload...)
	}

	return message, nil
}

// slotOffset converts a field slot into its vtable offset.
func slotOffset(slot int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(flatbuffers.VtableMetadataFields+slot) * flatbuffers.SizeVOffsetT
}
