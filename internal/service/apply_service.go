package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booth-festa/internal/eligibility"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/internal/pricing"
	"github.com/Eursukkul/booth-festa/internal/repository"
	"github.com/Eursukkul/booth-festa/pkg/cache"
	"gorm.io/gorm"
)

var (
	ErrNoConfig     = errors.New("no configuration has been published yet")
	ErrBoothSoldOut = errors.New("booth is sold out")
)

// SnapshotCache holds the current published configuration. Get returns
// cache.ErrMiss when nothing is cached.
type SnapshotCache interface {
	Get(ctx context.Context) (*models.ConfigPublished, error)
	Set(ctx context.Context, snap models.ConfigPublished) error
	Invalidate(ctx context.Context) error
}

type CatalogBooth struct {
	Booth      models.Booth
	Price      int
	Selectable bool
	Options    eligibility.Visibility
}

type CatalogSection struct {
	Location string
	Booths   []CatalogBooth
}

// Catalog is the booth list as the form shows it at one instant.
type Catalog struct {
	Version           string
	EarlyBird         bool
	Deadline          string
	Categories        []string
	SessionCategories []string
	UnitPrices        models.UnitPrices
	Sections          []CatalogSection
}

type QuoteResult struct {
	Version  string
	Quote    pricing.Quote
	Options  eligibility.Visibility
	Warnings []eligibility.Warning
}

type ApplyService interface {
	CurrentConfig(ctx context.Context) (*models.ConfigPublished, error)
	Catalog(ctx context.Context, now time.Time) (*Catalog, error)
	Quote(ctx context.Context, sel models.Selection, now time.Time) (*QuoteResult, error)
	// ImportSnapshot stores a published configuration. Importing a version
	// twice is a no-op; it reports whether the version was new.
	ImportSnapshot(ctx context.Context, snap models.ConfigPublished) (bool, error)
	// Seed imports snap only when no snapshot has been stored yet.
	Seed(ctx context.Context, snap models.ConfigPublished) (bool, error)
}

type applyService struct {
	repo  repository.SnapshotRepository
	cache SnapshotCache
}

// NewApplyService builds the public form service. snapshots may be nil.
func NewApplyService(repo repository.SnapshotRepository, snapshots SnapshotCache) ApplyService {
	return &applyService{repo: repo, cache: snapshots}
}

func (s *applyService) CurrentConfig(ctx context.Context) (*models.ConfigPublished, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("[ApplyService] cache read failed, falling back to database: %v", err)
		}
	}

	row, err := s.repo.Latest(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	var cfg models.EventConfig
	if err := json.Unmarshal([]byte(row.Body), &cfg); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", row.Version, err)
	}
	snap := &models.ConfigPublished{Version: row.Version, Config: cfg, PublishedAt: row.PublishedAt}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *snap); err != nil {
			log.Printf("[ApplyService] cache write failed: %v", err)
		}
	}
	return snap, nil
}

func (s *applyService) Catalog(ctx context.Context, now time.Time) (*Catalog, error) {
	snap, err := s.CurrentConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg := snap.Config
	early := pricing.IsEarlyBird(cfg, now)

	cat := &Catalog{
		Version:           snap.Version,
		EarlyBird:         early,
		Deadline:          cfg.EarlyBirdDeadline,
		Categories:        cfg.Categories,
		SessionCategories: eligibility.SessionCategories,
		UnitPrices:        cfg.UnitPrices,
		Sections:          []CatalogSection{},
	}
	for _, sec := range cfg.Sections() {
		out := CatalogSection{Location: sec.Location, Booths: make([]CatalogBooth, 0, len(sec.Booths))}
		for _, b := range sec.Booths {
			out.Booths = append(out.Booths, CatalogBooth{
				Booth:      b,
				Price:      pricing.BoothPrice(b, early),
				Selectable: !b.SoldOut,
				Options:    eligibility.DeriveOptionVisibility(&b),
			})
		}
		cat.Sections = append(cat.Sections, out)
	}
	return cat, nil
}

func (s *applyService) Quote(ctx context.Context, sel models.Selection, now time.Time) (*QuoteResult, error) {
	snap, err := s.CurrentConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg := snap.Config

	booth := cfg.FindBooth(sel.BoothID)
	if booth != nil && booth.SoldOut {
		return nil, ErrBoothSoldOut
	}

	return &QuoteResult{
		Version:  snap.Version,
		Quote:    pricing.ComputePrice(cfg, sel, now),
		Options:  eligibility.DeriveOptionVisibility(booth),
		Warnings: eligibility.Evaluate(cfg, sel),
	}, nil
}

func (s *applyService) ImportSnapshot(ctx context.Context, snap models.ConfigPublished) (bool, error) {
	if snap.Version == "" {
		return false, errors.New("snapshot has no version")
	}
	body, err := json.Marshal(snap.Config)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	publishedAt := snap.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	created, err := s.repo.Upsert(ctx, &models.ConfigSnapshot{
		Version:     snap.Version,
		Body:        string(body),
		PublishedAt: publishedAt,
	})
	if err != nil {
		return false, fmt.Errorf("store snapshot %s: %w", snap.Version, err)
	}

	if created && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Printf("[ApplyService] cache invalidate failed: %v", err)
		}
	}
	return created, nil
}

func (s *applyService) Seed(ctx context.Context, snap models.ConfigPublished) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count snapshots: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	return s.ImportSnapshot(ctx, snap)
}
