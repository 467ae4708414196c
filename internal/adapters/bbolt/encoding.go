// Snapshot encoding for parsed dataset tables.
//
// A snapshot value is one version byte followed by the msgpack encoding of
// curriculum.Tables. Decoding a value with an unknown version reports a miss
// so the caller re-parses the workbook and overwrites the stale entry.
package bbolt

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/corey/curricula/internal/domain/curriculum"
)

// snapshotVersion changes whenever curriculum.Tables changes shape.
const snapshotVersion byte = 1

// encodeSnapshot encodes tables behind the version header.
func encodeSnapshot(t *curriculum.Tables) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(snapshotVersion)
	if err := msgpack.NewEncoder(&buf).Encode(t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSnapshot decodes a snapshot value. ok is false for a value written
// by another format version.
func decodeSnapshot(data []byte) (t *curriculum.Tables, ok bool, err error) {
	if len(data) == 0 {
		return nil, false, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	if data[0] != snapshotVersion {
		return nil, false, nil
	}
	t = new(curriculum.Tables)
	if err := msgpack.NewDecoder(bytes.NewReader(data[1:])).Decode(t); err != nil {
		return nil, false, err
	}
	return t, true, nil
}
