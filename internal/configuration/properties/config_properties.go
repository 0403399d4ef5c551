package properties

type ApplicationConfigProperties struct {
	Profile  string `yaml:"profile"`
	LogLevel string `yaml:"log-level"`
}

type StoreConfigProperties struct {
	// RequiredApprovals is the threshold at which an approved proposal
	// becomes ready.
	RequiredApprovals int `yaml:"required-approvals"`
}

type NotifyConfigProperties struct {
	// Durations in milliseconds.
	DefaultTimeout uint64 `yaml:"default-timeout"`
	LoadingDelay   uint64 `yaml:"loading-delay"`
}

type CacheConfigProperties struct {
	TTL        uint64 `yaml:"ttl"`
	MaxEntries int    `yaml:"max-entries"`
}

type JournalConfigProperties struct {
	Dir    string `yaml:"dir"`
	NoSync bool   `yaml:"no-sync"`
}

type PollConfigProperties struct {
	Interval uint64 `yaml:"interval"`
	// Source is a JSON file with the authoritative record set; polling is
	// disabled when empty. Real deployments plug in a chain-backed Fetcher.
	Source string `yaml:"source"`
}

type MetricsConfigProperties struct {
	Address string `yaml:"address"`
}

type Config struct {
	Application ApplicationConfigProperties `yaml:"app"`
	Store       StoreConfigProperties       `yaml:"store"`
	Notify      NotifyConfigProperties      `yaml:"notify"`
	Cache       CacheConfigProperties       `yaml:"cache"`
	Journal     JournalConfigProperties     `yaml:"journal"`
	Poll        PollConfigProperties        `yaml:"poll"`
	Metrics     MetricsConfigProperties     `yaml:"metrics"`
}
