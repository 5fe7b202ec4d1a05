package config

// coreService is the fixed service name teddycloud stores its own
// settings under: "{contextDir}/core.yaml".
const coreService = "core"

// CoreConfig is the on-disk schema for a context's core.yaml.
type CoreConfig struct {
	Internal InternalConfig `yaml:"internal"`
	Cloud    CloudConfig    `yaml:"cloud"`
}

// InternalConfig holds local storage paths.
type InternalConfig struct {
	ContentDirFull string `yaml:"contentDirFull"`
	LibraryDirFull string `yaml:"libraryDirFull"`
}

// CloudConfig holds the upstream-proxy policy flags.
type CloudConfig struct {
	CacheContent         bool `yaml:"cacheContent"`
	CacheToLibrary       bool `yaml:"cacheToLibrary"`
	PrioCustomContent    bool `yaml:"prioCustomContent"`
	UpdateOnLowerAudioID bool `yaml:"updateOnLowerAudioId"`
	FfmpegStreamBufferMs int  `yaml:"ffmpegStreamBufferMs"`
}

// LoadCore loads core.yaml from a context directory.
func LoadCore(contextDir string) (*CoreConfig, error) {
	return LoadService[CoreConfig](contextDir, coreService)
}

// SaveCore writes core.yaml to a context directory.
func SaveCore(contextDir string, cfg *CoreConfig) error {
	return SaveService(contextDir, coreService, cfg)
}

// CorePath returns the path to a context's core.yaml.
func (c *Config) CorePath(context string) string {
	return c.ServicePath(context, coreService)
}
