package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the insurance RAG tool.
type Config struct {
	Ingest     IngestConfig     `yaml:"ingest"`
	Index      IndexConfig      `yaml:"index"`
	Search     SearchConfig     `yaml:"search"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	RawDir        string   `yaml:"raw_dir"`        // directory with source PDFs
	EmbeddingsDir string   `yaml:"embeddings_dir"` // per-document artifact output
	CachePath     string   `yaml:"cache_path"`     // bbolt embedding cache
	Includes      []string `yaml:"includes"`
	Excludes      []string `yaml:"excludes"`
	ChunkWords    int      `yaml:"chunk_words"`
	ChunkOverlap  int      `yaml:"chunk_overlap"`
}

// IndexConfig holds index build configuration.
type IndexConfig struct {
	Dir            string `yaml:"dir"`  // where index/mapping pairs are written
	Type           string `yaml:"type"` // "flat", "ivf" or "hnsw"
	Dimension      int    `yaml:"dimension"`
	Prefix         string `yaml:"prefix"`
	MappingPrefix  string `yaml:"mapping_prefix"`
	NProbe         int    `yaml:"nprobe"`          // ivf: clusters probed per query
	HNSWLinks      int    `yaml:"hnsw_links"`      // hnsw: links per node
	HNSWEfSearch   int    `yaml:"hnsw_ef_search"`  // hnsw: search beam width
	HNSWEfConstruct int   `yaml:"hnsw_ef_construct"`
}

// SearchConfig holds the retrieval and re-ranking heuristics. The weights are
// untuned heuristics carried over from the original deployment; they are
// configuration, not constants, so they can be recalibrated against a labelled
// relevance set.
type SearchConfig struct {
	TopK             int                 `yaml:"top_k"`
	MinScore         float64             `yaml:"min_score"`
	OversampleFloor  int                 `yaml:"oversample_floor"`
	OversampleFactor int                 `yaml:"oversample_factor"`
	DistanceScale    float64             `yaml:"distance_scale"`
	SectionWeights   map[string]float64  `yaml:"section_weights"`
	VehicleGating    bool                `yaml:"vehicle_gating"`
	VehicleBoost     float64             `yaml:"vehicle_boost"`
	SpecificityBoost float64             `yaml:"specificity_boost"`
	MinIndicators    int                 `yaml:"min_indicators"`
	VehicleKeywords  map[string][]string `yaml:"vehicle_keywords"` // filename tag -> query keywords
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// GenerationConfig holds answer generation configuration.
type GenerationConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			RawDir:        "data/raw",
			EmbeddingsDir: "data/embeddings",
			CachePath:     "data/cache/embeddings.db",
			Includes:      []string{"**/*.pdf"},
			Excludes:      []string{},
			ChunkWords:    512,
			ChunkOverlap:  50,
		},
		Index: IndexConfig{
			Dir:             "models/index",
			Type:            "flat",
			Dimension:       768,
			Prefix:          "vector_index",
			MappingPrefix:   "id_mapping",
			NProbe:          4,
			HNSWLinks:       16,
			HNSWEfSearch:    64,
			HNSWEfConstruct: 200,
		},
		Search: SearchConfig{
			TopK:             5,
			MinScore:         0.15,
			OversampleFloor:  50,
			OversampleFactor: 5,
			DistanceScale:    2.0,
			SectionWeights: map[string]float64{
				"asegurado": 1.3,
				"consiste":  0.7,
			},
			VehicleGating:    true,
			VehicleBoost:     1.2,
			SpecificityBoost: 1.4,
			MinIndicators:    2,
			VehicleKeywords: map[string][]string{
				"moto":   {"moto", "motocicleta", "ciclomotor", "scooter"},
				"auto":   {"coche", "auto", "automóvil", "automovil", "turismo"},
				"camion": {"camión", "camion", "furgoneta", "vehículo industrial", "vehiculo industrial"},
			},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 768,
			BatchSize: 32,
		},
		Generation: GenerationConfig{
			Model:       "gpt-3.5-turbo",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   512,
			Temperature: 0.7,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for rag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "rag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
