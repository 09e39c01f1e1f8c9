package gelf

const (
	// GELF payload version emitted as the first key of every record
	Version string = "1.1"

	// Chunk wire header (little endian)
	chunkMagicLen    int = 2
	chunkIDLen       int = 8
	chunkSeqLen      int = 1
	chunkTotalLen    int = 1
	ChunkHeaderLen   int = chunkMagicLen + chunkIDLen + chunkSeqLen + chunkTotalLen
	MaxChunks        int = 128
	DefaultChunkSize int = 8192

	// Offsets inside a chunk header
	chunkIDOffset    int = chunkMagicLen
	chunkSeqOffset   int = chunkIDOffset + chunkIDLen
	chunkTotalOffset int = chunkSeqOffset + chunkSeqLen

	// Top level keys
	keyVersion      string = "version"
	keyHost         string = "host"
	keyShortMessage string = "short_message"
	keyFullMessage  string = "full_message"
	keyTimestamp    string = "timestamp"
	keyLevel        string = "level"

	userFieldPrefix string = "_"
)

var chunkMagic = [chunkMagicLen]byte{0x1e, 0x0f}
