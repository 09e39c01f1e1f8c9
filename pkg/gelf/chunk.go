package gelf

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
)

// Lazily frames a payload into GELF UDP chunks.
// Each call to Next advances the sequence; a consumed Chunker cannot be rewound.
type Chunker struct {
	payload   []byte
	messageID uint64
	chunkSize int
	capacity  int
	total     int
	seq       int
}

type chunkerConfig struct {
	chunkSize int
	messageID uint64
	idPinned  bool
	idSource  io.Reader
}

type ChunkerOption func(*chunkerConfig)

// Sets the full datagram size (header included)
func WithChunkSize(size int) ChunkerOption {
	return func(cfg *chunkerConfig) {
		cfg.chunkSize = size
	}
}

// Pins the message identifier shared by every chunk
func WithMessageID(id uint64) ChunkerOption {
	return func(cfg *chunkerConfig) {
		cfg.messageID = id
		cfg.idPinned = true
	}
}

// Replaces the random source used when no message identifier is pinned
func WithIDSource(source io.Reader) ChunkerOption {
	return func(cfg *chunkerConfig) {
		cfg.idSource = source
	}
}

// Validates sizes and prepares the chunk sequence.
// Fails before producing anything when the payload needs more than MaxChunks chunks.
func NewChunker(payload []byte, opts ...ChunkerOption) (chunker *Chunker, err error) {
	cfg := chunkerConfig{
		chunkSize: DefaultChunkSize,
		idSource:  rand.Reader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.chunkSize <= ChunkHeaderLen {
		err = fmt.Errorf("%w: chunk size %d must exceed header length %d", ErrInvalidChunkSize, cfg.chunkSize, ChunkHeaderLen)
		return
	}

	capacity := cfg.chunkSize - ChunkHeaderLen
	total := ChunkCount(len(payload), capacity)
	if total > MaxChunks {
		err = fmt.Errorf("%w: payload of %d bytes needs %d chunks of %d bytes (limit %d)",
			ErrMessageTooLarge, len(payload), total, capacity, MaxChunks)
		return
	}

	if !cfg.idPinned {
		cfg.messageID, err = RandomMessageID(cfg.idSource)
		if err != nil {
			err = fmt.Errorf("failed to generate random message identifier: %w", err)
			return
		}
	}

	chunker = &Chunker{
		payload:   payload,
		messageID: cfg.messageID,
		chunkSize: cfg.chunkSize,
		capacity:  capacity,
		total:     total,
	}
	return
}

// Number of chunks needed for a payload, never less than one
func ChunkCount(payloadLen int, capacity int) (total int) {
	if payloadLen <= 0 || capacity <= 0 {
		total = 1
		return
	}
	total = (payloadLen + capacity - 1) / capacity
	return
}

// Reads eight bytes from source as a little endian identifier
func RandomMessageID(source io.Reader) (id uint64, err error) {
	var b [chunkIDLen]byte
	_, err = io.ReadFull(source, b[:])
	if err != nil {
		return
	}
	id = binary.LittleEndian.Uint64(b[:])
	return
}

func (chunker *Chunker) MessageID() uint64 {
	return chunker.messageID
}

func (chunker *Chunker) Total() int {
	return chunker.total
}

// Chunks not yet produced
func (chunker *Chunker) Remaining() int {
	return chunker.total - chunker.seq
}

// Produces the next framed chunk. Returns false once all chunks were produced.
func (chunker *Chunker) Next() (chunk []byte, ok bool) {
	if chunker.seq >= chunker.total {
		return
	}

	start := chunker.seq * chunker.capacity
	end := start + chunker.capacity
	if start > len(chunker.payload) {
		start = len(chunker.payload)
	}
	if end > len(chunker.payload) {
		end = len(chunker.payload)
	}
	slice := chunker.payload[start:end]

	chunk = make([]byte, ChunkHeaderLen+len(slice))
	copy(chunk, chunkMagic[:])
	binary.LittleEndian.PutUint64(chunk[chunkIDOffset:], chunker.messageID)
	chunk[chunkSeqOffset] = byte(chunker.seq)
	chunk[chunkTotalOffset] = byte(chunker.total)
	copy(chunk[ChunkHeaderLen:], slice)

	chunker.seq++
	ok = true
	return
}

// Iterates the remaining chunks with their sequence numbers
func (chunker *Chunker) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for {
			seq := chunker.seq
			chunk, ok := chunker.Next()
			if !ok || !yield(seq, chunk) {
				return
			}
		}
	}
}

// Decoded view of a chunk header
type ChunkHeader struct {
	MessageID uint64
	Sequence  uint8
	Total     uint8
}

// Splits a framed chunk into its header and payload slice
func ParseChunk(chunk []byte) (header ChunkHeader, data []byte, err error) {
	if len(chunk) < ChunkHeaderLen {
		err = fmt.Errorf("invalid chunk length %d: must be minimum length of %d", len(chunk), ChunkHeaderLen)
		return
	}
	if chunk[0] != chunkMagic[0] || chunk[1] != chunkMagic[1] {
		err = fmt.Errorf("invalid chunk magic 0x%02X%02X", chunk[0], chunk[1])
		return
	}

	header.MessageID = binary.LittleEndian.Uint64(chunk[chunkIDOffset:])
	header.Sequence = chunk[chunkSeqOffset]
	header.Total = chunk[chunkTotalOffset]
	data = chunk[ChunkHeaderLen:]
	return
}
