package dto

import (
	"time"

	"github.com/Eursukkul/booth-festa/internal/eligibility"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/internal/pricing"
	"github.com/Eursukkul/booth-festa/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type ConfigResponse struct {
	Version     string             `json:"version"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty"`
	Config      models.EventConfig `json:"config"`
}

type SaveConfigResponse struct {
	Success bool   `json:"success"`
	Version string `json:"version"`
}

type DeployResponse struct {
	Success bool `json:"success"`
}

type BoothResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Location        string                 `json:"location"`
	Price           int                    `json:"price"`
	RegularPrice    int                    `json:"regularPrice"`
	EarlyBirdPrice  int                    `json:"earlyBirdPrice"`
	SoldOut         bool                   `json:"soldOut"`
	Selectable      bool                   `json:"selectable"`
	ProhibitSession bool                   `json:"prohibitSession"`
	Limits          models.BoothLimits     `json:"limits"`
	Options         eligibility.Visibility `json:"options"`
}

type SectionResponse struct {
	Location string          `json:"location"`
	Booths   []BoothResponse `json:"booths"`
}

type CatalogResponse struct {
	Version           string            `json:"version"`
	EarlyBird         bool              `json:"earlyBird"`
	EarlyBirdDeadline string            `json:"earlyBirdDeadline"`
	Categories        []string          `json:"categories"`
	SessionCategories []string          `json:"sessionCategories"`
	UnitPrices        models.UnitPrices `json:"unitPrices"`
	Sections          []SectionResponse `json:"sections"`
}

type QuoteResponse struct {
	Version    string                 `json:"version"`
	Total      int                    `json:"total"`
	EarlyBird  bool                   `json:"earlyBird"`
	BoothPrice int                    `json:"boothPrice"`
	LineItems  []pricing.LineItem     `json:"lineItems"`
	Options    eligibility.Visibility `json:"options"`
	Warnings   []eligibility.Warning  `json:"warnings"`
}

func ToConfigResponse(snap *models.ConfigPublished) ConfigResponse {
	resp := ConfigResponse{Version: snap.Version, Config: snap.Config}
	if !snap.PublishedAt.IsZero() {
		at := snap.PublishedAt
		resp.PublishedAt = &at
	}
	return resp
}

func ToCatalogResponse(cat *service.Catalog) CatalogResponse {
	resp := CatalogResponse{
		Version:           cat.Version,
		EarlyBird:         cat.EarlyBird,
		EarlyBirdDeadline: cat.Deadline,
		Categories:        cat.Categories,
		SessionCategories: cat.SessionCategories,
		UnitPrices:        cat.UnitPrices,
		Sections:          make([]SectionResponse, len(cat.Sections)),
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	for i, sec := range cat.Sections {
		out := SectionResponse{Location: sec.Location, Booths: make([]BoothResponse, len(sec.Booths))}
		for j, b := range sec.Booths {
			out.Booths[j] = BoothResponse{
				ID:              b.Booth.ID,
				Name:            b.Booth.Name,
				Location:        b.Booth.Location,
				Price:           b.Price,
				RegularPrice:    b.Booth.Prices.Regular,
				EarlyBirdPrice:  b.Booth.Prices.EarlyBird,
				SoldOut:         b.Booth.SoldOut,
				Selectable:      b.Selectable,
				ProhibitSession: b.Booth.ProhibitSession,
				Limits:          b.Booth.Limits,
				Options:         b.Options,
			}
		}
		resp.Sections[i] = out
	}
	return resp
}

func ToQuoteResponse(res *service.QuoteResult) QuoteResponse {
	return QuoteResponse{
		Version:    res.Version,
		Total:      res.Quote.Total,
		EarlyBird:  res.Quote.EarlyBird,
		BoothPrice: res.Quote.BoothPrice,
		LineItems:  res.Quote.LineItems,
		Options:    res.Options,
		Warnings:   res.Warnings,
	}
}
