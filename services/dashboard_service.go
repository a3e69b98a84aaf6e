package services

import (
	"context"
	"math"
	"sort"

	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
)

type DashboardService struct {
	store repository.Store
	clock Clock
}

func NewDashboardService(store repository.Store, clock Clock) *DashboardService {
	return &DashboardService{store: store, clock: clock}
}

// Dashboard thống kê giường theo PG, tỉ lệ lấp đầy và danh sách booking của owner
func (s *DashboardService) Dashboard(ctx context.Context, actor *Actor) (*dto.Dashboard, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	pgs, err := s.store.PGs().ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("Could not load properties", err)
	}

	result := &dto.Dashboard{
		Properties: make([]dto.PGStats, 0, len(pgs)),
		Students:   []dto.UserBrief{},
	}
	for _, pg := range pgs {
		rooms, err := s.store.Rooms().ListByPG(ctx, pg.ID)
		if err != nil {
			return nil, errors.Internal("Could not load rooms", err)
		}
		stats := dto.PGStats{ID: pg.ID, Name: pg.Name, Area: pg.Area, RoomCount: len(rooms)}
		for _, room := range rooms {
			for _, bed := range room.Beds {
				stats.TotalBeds++
				if !bed.IsAvailable {
					stats.OccupiedBeds++
				}
			}
		}
		stats.AvailableBeds = stats.TotalBeds - stats.OccupiedBeds
		result.Properties = append(result.Properties, stats)
		result.Stats.TotalBeds += stats.TotalBeds
		result.Stats.OccupiedBeds += stats.OccupiedBeds
	}
	result.Stats.TotalPGs = len(pgs)
	result.Stats.OccupancyRate = OccupancyRate(result.Stats.OccupiedBeds, result.Stats.TotalBeds)

	bookings, err := s.store.Bookings().ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("Could not load bookings", err)
	}
	result.Bookings = bookingViews(bookings, s.clock.Today())

	students, err := s.store.Users().ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, errors.Internal("Could not load students", err)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].FirstName != students[j].FirstName {
			return students[i].FirstName < students[j].FirstName
		}
		return students[i].Username < students[j].Username
	})
	for i := range students {
		result.Students = append(result.Students, *dto.NewUserBrief(&students[i]))
	}
	return result, nil
}

// OccupancyRate phần trăm làm tròn 2 chữ số, 0 khi chưa có giường
func OccupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*10000) / 100
}
