package deployments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

// CompressedSuffix marks snapshot files written with brotli.
const CompressedSuffix = ".br"

// EncodeSnapshot writes state as indented JSON, brotli-compressed when compress is set.
func EncodeSnapshot(writer io.Writer, state ilock.State, compress bool) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	payload = append(payload, '\n')

	if !compress {
		_, err = writer.Write(payload)
		return err
	}
	brotliWriter := brotli.NewWriterLevel(writer, brotli.BestCompression)
	if _, err := brotliWriter.Write(payload); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return brotliWriter.Close()
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot with the same compress flag.
func DecodeSnapshot(reader io.Reader, compressed bool) (ilock.State, error) {
	source := reader
	if compressed {
		source = brotli.NewReader(reader)
	}

	var state ilock.State
	if err := json.NewDecoder(source).Decode(&state); err != nil {
		return ilock.State{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, nil
}

// WriteSnapshot saves state to path. Paths ending in .br are compressed.
func WriteSnapshot(path string, state ilock.State) error {
	var buffer bytes.Buffer
	if err := EncodeSnapshot(&buffer, state, strings.HasSuffix(path, CompressedSuffix)); err != nil {
		return err
	}
	return writeFileAtomic(path, buffer.Bytes())
}

func ReadSnapshot(path string) (ilock.State, error) {
	file, err := os.Open(path)
	if err != nil {
		return ilock.State{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()
	return DecodeSnapshot(file, strings.HasSuffix(path, CompressedSuffix))
}

// OpenToken restores the token saved at path.
func OpenToken(path string, options ...ilock.Option) (*ilock.Token, error) {
	state, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return ilock.Restore(state, options...)
}
