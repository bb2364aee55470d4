package fragment

import (
	"github.com/hwcatalog/hwsearch/internal/optimize"
)

// MasterFileName is the manifest file clients fetch before any shard.
const MasterFileName = "master_index.json"

// ShardMetadata extends the base index metadata with fragment and
// compression markers so a shard is self-describing.
type ShardMetadata struct {
	TotalProducts         int    `json:"totalProducts"`
	LastUpdated           string `json:"lastUpdated"`
	EnhancedNormalization bool   `json:"enhancedNormalization"`
	Fragment              string `json:"fragment"`
	FragmentType          string `json:"fragmentType"`
	CompressionType       string `json:"compressionType"`
	CompressionVersion    string `json:"compressionVersion"`
}

// Shard is one compressed alphabetic fragment. Name and FileName are
// bookkeeping for writers and are not serialized; the manifest carries
// them instead.
type Shard struct {
	Name     string `json:"-"`
	FileName string `json:"-"`

	Version  string                       `json:"version"`
	Metadata ShardMetadata                `json:"metadata"`
	Maps     map[string]optimize.Table    `json:"maps"`
	Indexes  map[string][]optimize.Entry  `json:"indexes"`
	CodeMap  map[string]string            `json:"codeMap"`
}

// Info is one manifest entry describing a shard's code range.
type Info struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ManifestMetadata describes the fragmented index as a whole.
type ManifestMetadata struct {
	TotalProducts      int    `json:"totalProducts"`
	LastUpdated        string `json:"lastUpdated"`
	Fragmented         bool   `json:"fragmented"`
	FragmentationType  string `json:"fragmentationType"`
	CompressionType    string `json:"compressionType"`
	CompressionVersion string `json:"compressionVersion"`
	HasCodeMap         bool   `json:"hasCodeMap"`
}

// Manifest is the master index listing every shard and its range.
type Manifest struct {
	Version   string           `json:"version"`
	Metadata  ManifestMetadata `json:"metadata"`
	Fragments []Info           `json:"fragments"`
}

// Output bundles the shards and manifest produced by one Fragment call.
type Output struct {
	Shards   []*Shard
	Manifest *Manifest
}
