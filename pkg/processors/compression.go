// File: pkg/processors/compression.go

package processors

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec определяет алгоритм сжатия входного файла.
type Codec string

const (
	CodecNone Codec = ""
	CodecZstd Codec = "zstd"
	CodecGzip Codec = "gzip"
)

// DetectCodec определяет алгоритм по расширению имени файла и возвращает
// имя без суффикса сжатия ("launches.csv.zst" → "launches.csv").
func DetectCodec(name string) (Codec, string) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".zst", ".zstd":
		return CodecZstd, strings.TrimSuffix(name, filepath.Ext(name))
	case ".gz", ".gzip":
		return CodecGzip, strings.TrimSuffix(name, filepath.Ext(name))
	default:
		return CodecNone, name
	}
}

// ContentType returns the MIME type of data compressed with c, or "" for CodecNone.
func (c Codec) ContentType() string {
	switch c {
	case CodecZstd:
		return "application/zstd"
	case CodecGzip:
		return "application/gzip"
	default:
		return ""
	}
}

// --- Decompression ---

// DecompressionProcessor распаковывает zstd блоки.
type DecompressionProcessor struct {
	decoder *zstd.Decoder
}

// NewDecompressionProcessor создает новый, готовый к использованию процессор распаковки.
func NewDecompressionProcessor() (*DecompressionProcessor, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(4))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &DecompressionProcessor{decoder: decoder}, nil
}

// ProcessBlock распаковывает блок данных целиком.
func (p *DecompressionProcessor) ProcessBlock(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	out, err := p.decoder.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress zstd: %w", err)
	}
	return out, nil
}

// Close освобождает ресурсы, связанные с декодером.
func (p *DecompressionProcessor) Close() {
	if p.decoder != nil {
		p.decoder.Close()
	}
}

// --- Public Helper Functions ---

// Decompress распаковывает содержимое файла name согласно его расширению.
// Несжатые данные возвращаются как есть.
func Decompress(name string, data []byte) ([]byte, error) {
	codec, _ := DetectCodec(name)

	switch codec {
	case CodecZstd:
		p, err := NewDecompressionProcessor()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		out, err := p.ProcessBlock(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil

	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open gzip stream: %w", name, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to decompress gzip: %w", name, err)
		}
		return out, nil

	default:
		return data, nil
	}
}

// Compress сжимает блок данных указанным алгоритмом.
// level: 1 (самый быстрый) - 22 (лучшее сжатие) для zstd, 1-9 для gzip.
func Compress(codec Codec, input []byte, level int) ([]byte, error) {
	switch codec {
	case CodecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(input, nil), nil

	case CodecGzip:
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		if _, err := zw.Write(input); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return input, nil
	}
}
