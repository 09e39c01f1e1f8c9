package gelf

import "fmt"

// Connectionless, size-bounded datagram sink
type Transport interface {
	Send(datagram []byte) error
}

type TransportFunc func(datagram []byte) error

func (fn TransportFunc) Send(datagram []byte) error {
	return fn(datagram)
}

// Pure transform applied to the rendered message before chunking
type Compressor interface {
	Compress(payload []byte) ([]byte, error)
}

type CompressorFunc func(payload []byte) ([]byte, error)

func (fn CompressorFunc) Compress(payload []byte) ([]byte, error) {
	return fn(payload)
}

// Renders, optionally compresses, chunks and transmits a message.
// A nil compressor sends the JSON as-is and a chunkSize <= 0 selects DefaultChunkSize. Transport errors are returned unchanged
// and the remaining chunks are not sent.
func Send(msg *Message, transport Transport, chunkSize int, compressor Compressor, opts ...ChunkerOption) (err error) {
	payload := msg.Bytes()

	if compressor != nil {
		payload, err = compressor.Compress(payload)
		if err != nil {
			err = fmt.Errorf("failed to compress message: %w", err)
			return
		}
	}

	if chunkSize > 0 {
		opts = append([]ChunkerOption{WithChunkSize(chunkSize)}, opts...)
	}

	chunker, err := NewChunker(payload, opts...)
	if err != nil {
		return
	}

	for {
		chunk, ok := chunker.Next()
		if !ok {
			break
		}
		err = transport.Send(chunk)
		if err != nil {
			return
		}
	}
	return
}
