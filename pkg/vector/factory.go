package vector

import "fmt"

// New creates a Provider from config. An empty provider name selects the
// embedded chromem backend.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "chromem":
		return NewChromemProvider(ChromemConfig{
			PersistPath: cfg.Path,
		})
	case "qdrant":
		return NewQdrantProvider(QdrantConfig{
			Host:   cfg.Host,
			Port:   cfg.Port,
			APIKey: cfg.APIKey,
			UseTLS: cfg.UseTLS,
		})
	default:
		return nil, fmt.Errorf("unknown vector provider '%s' (supported: chromem, qdrant)", cfg.Provider)
	}
}
