package source

import "log/slog"

// Config selects credentials for the remote fetchers.
type Config struct {
	HTTPRetries           int
	S3                    S3Config
	AzureConnectionString string
	Logger                *slog.Logger
}

// NewDefaultEngine registers every fetcher: local files, HTTP(S), S3 and
// Azure Blob Storage.
func NewDefaultEngine(cfg Config) *Engine {
	return NewEngine(
		NewFileFetcher(),
		NewHTTPFetcher(cfg.Logger, cfg.HTTPRetries),
		NewS3Fetcher(cfg.S3),
		NewAzureFetcher(cfg.AzureConnectionString),
	)
}
