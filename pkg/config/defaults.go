package config

import (
	"github.com/Sumatoshi-tech/changanya/pkg/alg/bloom"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/geohash"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
)

// Bloom filter defaults.
const (
	DefaultBloomCapacity          = bloom.DefaultCapacity
	DefaultBloomFalsePositiveRate = bloom.DefaultFalsePositiveRate
)

// Simhash defaults.
const (
	DefaultSimhashBitWidth    = simhash.DefaultBitWidth
	DefaultSimhashMaxDistance = simhash.DefaultMaxDistance
	DefaultSimhashBlockCount  = simhash.DefaultBlockCount
)

// Geohash defaults.
const (
	DefaultGeohashPrecision = geohash.DefaultPrecision
)

// Logging and output defaults.
const (
	DefaultLogLevel     = LogLevelInfo
	DefaultLogFormat    = LogFormatText
	DefaultOutputFormat = OutputTable
)

// Log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)
