package extract

import (
	"context"
	"fmt"
	"log/slog"

	"ytextract/internal/config"
	"ytextract/internal/youtube"
)

// NewLister builds the extraction capability selected by cfg.
func NewLister(ctx context.Context, cfg *config.Config, logger *slog.Logger) (youtube.VideoLister, error) {
	switch cfg.Extractor.Source {
	case config.SourceAPI:
		lister, err := youtube.NewAPILister(ctx, cfg.Extractor.APIKey)
		if err != nil {
			return nil, err
		}
		lister.Logger = logger
		return lister, nil
	case config.SourceYtdlp, "":
		lister := youtube.NewYtdlpLister()
		lister.Path = cfg.Extractor.YtdlpPath
		lister.Timeout = cfg.YtdlpTimeout()
		lister.ExtraArgs = cfg.Extractor.ExtraArgs
		lister.FetchDetails = cfg.Extractor.FetchDetails
		lister.Logger = logger
		return lister, nil
	default:
		return nil, fmt.Errorf("unknown extractor source %q", cfg.Extractor.Source)
	}
}

// ListOptions derives listing options from cfg.
func ListOptions(cfg *config.Config) (*youtube.ListOptions, error) {
	contentType, err := youtube.ParseContentType(cfg.Extractor.Content)
	if err != nil {
		return nil, err
	}
	return &youtube.ListOptions{ContentType: contentType}, nil
}
