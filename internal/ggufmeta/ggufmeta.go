// Package ggufmeta best-effort reads GGUF weight-file headers after a
// download completes or when the manager finds weights already on disk,
// purely for operator-facing
// reporting — spec.md is explicit that pyano does not itself implement
// inference, so nothing here is ever load-bearing for admission or the
// process supervisor. It backs the WeightsMetadata addition in spec.md §3,
// surfaced via Manager.DescribeWeights.
package ggufmeta

import (
	"github.com/gpustack/gguf-parser-go"

	"github.com/ByteBell/pyano/internal/logging"
)

// Info is the WeightsMetadata value from spec.md §3: the handful of GGUF
// header fields worth reporting to an operator.
type Info struct {
	Architecture   string
	ParameterCount uint64
	Quantization   string
	ContextLength  uint64
}

// Describe parses path as a GGUF file and returns its header metadata. A
// parse failure (non-GGUF weights, truncated file, unsupported version) is
// logged at debug and returned as an error the caller is expected to ignore.
func Describe(path string) (Info, error) {
	f, err := gguf_parser.ParseGGUFFile(path)
	if err != nil {
		logging.WithField("ggufmeta", "path", path).Debugf("not a parseable GGUF file: %v", err)
		return Info{}, err
	}

	meta := f.Metadata()
	info := Info{
		Architecture:   meta.Architecture,
		ParameterCount: meta.Parameters,
		Quantization:   meta.FileType.String(),
		ContextLength:  meta.ContextLength,
	}

	logging.WithField("ggufmeta", "path", path).
		WithField("architecture", info.Architecture).
		WithField("quantization", info.Quantization).
		Info("weights metadata")
	return info, nil
}
