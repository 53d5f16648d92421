package service

import (
	"context"

	"github.com/jpalomar/vendorhub/internal/store"
)

// Ranking sizes the reporting API has always used.
const (
	topVendorsLimit = 3
	topClientsLimit = 10
)

// ReportService computes revenue rankings over completed orders.
type ReportService struct {
	store store.OrderStore
}

// NewReportService creates a new ReportService.
func NewReportService(s store.OrderStore) *ReportService {
	return &ReportService{store: s}
}

// TopVendors returns up to three vendors ranked by completed-order revenue.
func (s *ReportService) TopVendors(ctx context.Context) ([]TopVendorDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	rows, err := s.store.TopVendors(ctx, topVendorsLimit)
	if err != nil {
		return nil, err
	}
	dtos := make([]TopVendorDto, len(rows))
	for i, row := range rows {
		dtos[i] = TopVendorDto{
			TotalSold: row.TotalSold,
			Vendor:    []VendorDto{*toVendorDto(&row.Vendor)},
		}
	}
	return dtos, nil
}

// TopClients returns up to ten clients ranked by completed-order spend.
func (s *ReportService) TopClients(ctx context.Context) ([]TopClientDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	rows, err := s.store.TopClients(ctx, topClientsLimit)
	if err != nil {
		return nil, err
	}
	dtos := make([]TopClientDto, len(rows))
	for i, row := range rows {
		dtos[i] = TopClientDto{
			TotalBought: row.TotalBought,
			Client:      []ClientDto{*toClientDto(&row.Client)},
		}
	}
	return dtos, nil
}
