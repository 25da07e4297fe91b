package app

import (
	"fmt"
	"io"
	"log"

	"accsetup/internal/gateway/config"
	artifactrepo "accsetup/internal/gateway/repository/artifact"
	historyrepo "accsetup/internal/gateway/repository/history"
)

type gatewayStores struct {
	history  historyrepo.Store
	artifact artifactrepo.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	hist := historyrepo.New(cfg.History.PGDSN, cfg.History.Path)
	switch hist.(type) {
	case *historyrepo.PostgresStore:
		log.Printf("history store: postgres")
	default:
		if cfg.History.PGDSN != "" {
			log.Printf("history store: postgres unreachable, using file %s", cfg.History.Path)
		} else {
			log.Printf("history store: file %s", cfg.History.Path)
		}
	}

	artifactStore, err := chooseArtifactStore(cfg, artifactrepo.NewMemoryStore(), "in-memory", newArtifactS3StoreFactory(cfg))
	if err != nil {
		return nil, err
	}
	return &gatewayStores{history: hist, artifact: artifactStore}, nil
}

func (s *gatewayStores) close() {
	if c, ok := s.history.(io.Closer); ok {
		_ = c.Close()
	}
}

func newArtifactS3StoreFactory(cfg *config.Config) func() (artifactrepo.Store, error) {
	return func() (artifactrepo.Store, error) {
		s3Cfg := artifactrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
			URLTTL:    cfg.Artifact.URLTTL,
		}
		s3Store, err := artifactrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
		return s3Store, nil
	}
}

func chooseArtifactStore(
	cfg *config.Config,
	fallback artifactrepo.Store,
	fallbackLabel string,
	s3Factory func() (artifactrepo.Store, error),
) (artifactrepo.Store, error) {
	if cfg.Artifact.CanUseS3() {
		return s3Factory()
	}
	if cfg.Artifact.Enabled {
		log.Printf("artifact store: using %s fallback (s3 config incomplete)", fallbackLabel)
	}
	if fallback == nil {
		return nil, fmt.Errorf("artifact fallback store is nil")
	}
	return fallback, nil
}
