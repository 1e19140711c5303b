// File: pkg/processors/checksum.go

package processors

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"
)

// ComputeChecksum вычисляет xxh3 хеш данных и возвращает hex-encoded строку.
func ComputeChecksum(data []byte) string {
	return hexHash(xxh3.Hash(data))
}

// ValidateChecksum проверяет соответствие данных ожидаемому хешу.
func ValidateChecksum(data []byte, expectedHash string) error {
	actual := ComputeChecksum(data)
	if actual != expectedHash {
		return fmt.Errorf(
			"checksum validation failed: expected %s, got %s",
			expectedHash, actual,
		)
	}
	return nil
}

// Fingerprint вычисляет xxh3 отпечаток табличных данных: заголовок и строки.
// Не зависит от формата источника (CSV, XLSX, SQL) - хешируются уже
// декодированные значения, поле за полем, с разделителями.
func Fingerprint(header []string, rows [][]string) string {
	h := xxh3.New()
	writeRow(h, header)
	for _, row := range rows {
		writeRow(h, row)
	}
	return hexHash(h.Sum64())
}

func writeRow(h *xxh3.Hasher, row []string) {
	for i, v := range row {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.WriteString(v)
	}
	h.Write([]byte{'\n'})
}

func hexHash(v uint64) string {
	return hex.EncodeToString(uint64ToBytes(v))
}

// uint64ToBytes конвертирует uint64 в байтовый массив (big-endian).
func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
