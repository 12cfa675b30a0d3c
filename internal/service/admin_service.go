package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booth-festa/internal/contentstore"
	"github.com/Eursukkul/booth-festa/internal/deploy"
	"github.com/Eursukkul/booth-festa/internal/literal"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/pkg/rabbitmq"
)

var (
	ErrConfigConflict    = errors.New("configuration was changed by someone else; reload and try again")
	ErrConfigNotFound    = errors.New("configuration file not found")
	ErrConfigUndecodable = errors.New("stored configuration cannot be decoded")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrStoreUnavailable  = errors.New("content store unavailable")
	ErrDeployFailed      = errors.New("redeploy failed")
)

// Publisher announces a saved configuration to downstream services.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type AdminService interface {
	// GetConfig loads and decodes the stored configuration and returns it
	// with its version token.
	GetConfig(ctx context.Context) (models.EventConfig, string, error)
	// SaveConfig replaces the stored configuration with cfg, conditional on
	// the version current at the time of the call.
	SaveConfig(ctx context.Context, cfg models.EventConfig) (string, error)
	// SaveConfigIfMatch replaces the stored configuration only if it is
	// still at token.
	SaveConfigIfMatch(ctx context.Context, cfg models.EventConfig, token string) (string, error)
	Redeploy(ctx context.Context) error
}

type adminService struct {
	store     contentstore.Store
	path      string
	trigger   deploy.Trigger
	publisher Publisher
	now       func() time.Time
}

// NewAdminService wires the admin use cases. publisher may be nil, in which
// case saves are not announced.
func NewAdminService(store contentstore.Store, path string, trigger deploy.Trigger, publisher Publisher) AdminService {
	if trigger == nil {
		trigger = deploy.Noop{}
	}
	return &adminService{
		store:     store,
		path:      path,
		trigger:   trigger,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *adminService) GetConfig(ctx context.Context) (models.EventConfig, string, error) {
	text, token, err := s.store.Load(ctx, s.path)
	if err != nil {
		return models.EventConfig{}, "", storeError("load config", err)
	}
	cfg, err := literal.Decode(text)
	if err != nil {
		return models.EventConfig{}, "", fmt.Errorf("%w: %w", ErrConfigUndecodable, err)
	}
	return cfg, token, nil
}

func (s *adminService) SaveConfig(ctx context.Context, cfg models.EventConfig) (string, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	_, token, err := s.store.Load(ctx, s.path)
	if err != nil && !errors.Is(err, contentstore.ErrNotFound) {
		return "", storeError("fetch version", err)
	}
	return s.write(ctx, cfg, token)
}

func (s *adminService) SaveConfigIfMatch(ctx context.Context, cfg models.EventConfig, token string) (string, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s.write(ctx, cfg, token)
}

func (s *adminService) write(ctx context.Context, cfg models.EventConfig, token string) (string, error) {
	next, err := s.store.Save(ctx, s.path, literal.Encode(cfg), token)
	if err != nil {
		return "", storeError("save config", err)
	}
	log.Printf("[AdminService] saved %s (%d booths) as version %s", s.path, len(cfg.Booths), next)

	// The store is the system of record; a lost announcement is repaired by
	// the next save.
	if s.publisher != nil {
		msg := models.ConfigPublished{Version: next, Config: cfg, PublishedAt: s.now().UTC()}
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyConfigUpdated, msg); err != nil {
			log.Printf("[AdminService] failed to publish version %s: %v", next, err)
		}
	}
	return next, nil
}

func (s *adminService) Redeploy(ctx context.Context) error {
	if err := s.trigger.Redeploy(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDeployFailed, err)
	}
	return nil
}

func storeError(op string, err error) error {
	var terr *contentstore.TransportError
	switch {
	case errors.Is(err, contentstore.ErrConflict):
		return ErrConfigConflict
	case errors.Is(err, contentstore.ErrNotFound):
		return ErrConfigNotFound
	case errors.As(err, &terr):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
