package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// CurrentSchemaVersion is the record version written by Encode.
	CurrentSchemaVersion uint8 = 2

	credentialFormatVersionV1 uint8 = 1

	maxTokenLength = 1<<16 - 1
)

// Encode serializes a credential into the current binary record format:
//
//	[version:1][token_len:2][token][saved_at:8]
func Encode(c *Credential) ([]byte, error) {
	if c == nil || c.Token == "" {
		return nil, ErrEmptyToken
	}
	if len(c.Token) > maxTokenLength {
		return nil, errors.New("token too long")
	}

	var buf bytes.Buffer
	buf.Grow(1 + 2 + len(c.Token) + 8)

	buf.WriteByte(CurrentSchemaVersion)
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(c.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(c.Token)
	if err := binary.Write(&buf, binary.BigEndian, c.SavedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary record. v1 records (no saved_at) are migrated to the
// current schema with SavedAt left at zero.
func Decode(data []byte) (*Credential, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != CurrentSchemaVersion && version != credentialFormatVersionV1 {
		return nil, fmt.Errorf("unsupported credential schema version %d", version)
	}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	if tokenLen == 0 {
		return nil, ErrEmptyToken
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}

	c := &Credential{
		SchemaVersion: CurrentSchemaVersion,
		Token:         string(token),
	}

	if version == CurrentSchemaVersion {
		if err := binary.Read(reader, binary.BigEndian, &c.SavedAt); err != nil {
			return nil, err
		}
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in credential record")
	}

	return c, nil
}

func decodeStored(data []byte) (*Credential, bool, error) {
	cred, err := Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return cred, len(data) > 0 && data[0] != CurrentSchemaVersion, nil
}
