package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// ArmorPrefix marks the compact text form of a snapshot.
const ArmorPrefix = "gc1:"

// maxDecodedSize caps what an armored snapshot may inflate to.
const maxDecodedSize = 256 << 20

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
)

// Armor compresses a JSON snapshot and encodes it as URL-safe text, small
// enough for channels such as QR codes.
func Armor(doc []byte) string {
	compressed := encoder.EncodeAll(doc, make([]byte, 0, len(doc)/2))
	return ArmorPrefix + base64.RawURLEncoding.EncodeToString(compressed)
}

// IsArmored reports whether blob is in armored form.
func IsArmored(blob []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(blob), []byte(ArmorPrefix))
}

// Decode returns the JSON form of blob, unwrapping it when armored.
func Decode(blob []byte) ([]byte, error) {
	if !IsArmored(blob) {
		return blob, nil
	}

	text := strings.TrimPrefix(string(bytes.TrimSpace(blob)), ArmorPrefix)
	compressed, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: armored snapshot: %v", common.ErrorParse, err)
	}

	plain, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: armored snapshot: %v", common.ErrorParse, err)
	}
	return plain, nil
}
