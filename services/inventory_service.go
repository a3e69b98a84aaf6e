package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"synca/constants"
	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/services/logger"
	"synca/validator"
)

// InventoryService quản lý phòng, giường và trạng thái giường của owner
type InventoryService struct {
	store    repository.Store
	bookings *BookingService
	catalog  *CatalogService
	logger   logger.Logger
}

func NewInventoryService(store repository.Store, bookings *BookingService, catalog *CatalogService, log logger.Logger) *InventoryService {
	return &InventoryService{store: store, bookings: bookings, catalog: catalog, logger: log}
}

// ToggleResult giường sau khi đổi trạng thái và các booking bị hủy theo
type ToggleResult struct {
	Bed       *models.Bed `json:"bed"`
	Cancelled []uint      `json:"cancelledBookings"`
}

func (s *InventoryService) ownedPG(ctx context.Context, actor *Actor, pgID uint) (*models.PG, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	pg, err := s.store.PGs().FindByID(ctx, pgID)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodePGNotFound, "PG not found.")
	}
	if err := actor.RequireOwnerOf(pg); err != nil {
		return nil, err
	}
	return pg, nil
}

// CreateRoom tạo phòng và tự sinh giường theo sức chứa của loại phòng
func (s *InventoryService) CreateRoom(ctx context.Context, actor *Actor, pgID uint, input dto.RoomInput) (*models.Room, error) {
	pg, err := s.ownedPG(ctx, actor, pgID)
	if err != nil {
		return nil, err
	}
	input.RoomNumber = strings.TrimSpace(input.RoomNumber)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}

	room := &models.Room{
		PGID:        pg.ID,
		RoomNumber:  input.RoomNumber,
		RoomType:    input.RoomType,
		PricePerBed: input.PricePerBed,
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		exists, err := tx.Rooms().NumberExists(ctx, pg.ID, room.RoomNumber)
		if err != nil {
			return errors.Internal("Could not check room number", err)
		}
		if exists {
			return errors.FieldError("roomNumber", "A room with this number already exists in this PG.")
		}
		if err := tx.Rooms().Create(ctx, room); err != nil {
			return errors.Internal("Could not create room", err)
		}
		capacity, ok := room.ShareCapacity()
		if !ok {
			return nil
		}
		for _, identifier := range models.BedIdentifiers(capacity) {
			bed := models.Bed{RoomID: room.ID, Identifier: identifier, IsAvailable: true}
			if err := tx.Beds().Create(ctx, &bed); err != nil {
				return errors.Internal("Could not create beds", err)
			}
			room.Beds = append(room.Beds, bed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room %s created in PG %d with %d beds", room.RoomNumber, pg.ID, len(room.Beds))
	s.catalog.Invalidate(ctx)
	return room, nil
}

// CreateBed thêm giường vào phòng, từ chối khi phòng đã đủ sức chứa
func (s *InventoryService) CreateBed(ctx context.Context, actor *Actor, pgID uint, input dto.BedInput) (*models.Bed, error) {
	pg, err := s.ownedPG(ctx, actor, pgID)
	if err != nil {
		return nil, err
	}
	input.Identifier = strings.TrimSpace(input.Identifier)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}

	bed := &models.Bed{RoomID: input.RoomID, Identifier: input.Identifier, IsAvailable: true}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		room, err := tx.Rooms().FindByID(ctx, input.RoomID)
		if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
			return errors.Internal("Could not load room", err)
		}
		if err != nil || room.PGID != pg.ID {
			return errors.FieldError("roomId", "Select a valid room for this property.")
		}
		exists, err := tx.Beds().IdentifierExists(ctx, room.ID, bed.Identifier)
		if err != nil {
			return errors.Internal("Could not check bed identifier", err)
		}
		if exists {
			return errors.FieldError("identifier", "A bed with this identifier already exists in this room.")
		}
		if capacity, ok := room.ShareCapacity(); ok {
			count, err := tx.Beds().CountByRoom(ctx, room.ID)
			if err != nil {
				return errors.Internal("Could not count beds", err)
			}
			if count >= capacity {
				return errors.Conflict(errors.ErrCodeRoomFull,
					fmt.Sprintf("Room %s already has the maximum of %d beds.", room.RoomNumber, capacity))
			}
		}
		if err := tx.Beds().Create(ctx, bed); err != nil {
			return errors.Internal("Could not create bed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bed, nil
}

// ToggleBed đổi trạng thái giường; mở lại giường sẽ hủy mọi booking còn hiệu lực trên giường
func (s *InventoryService) ToggleBed(ctx context.Context, actor *Actor, bedID uint, available bool) (*ToggleResult, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	result := &ToggleResult{Cancelled: []uint{}}
	var affected []models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		bed, err := tx.Beds().FindByID(ctx, bedID)
		if err != nil {
			return storeErr(err, errors.ErrCodeBedNotFound, "Bed not found.")
		}
		if err := actor.RequireOwnerOf(bedPG(bed)); err != nil {
			return err
		}
		if err := tx.Beds().SetAvailable(ctx, bed.ID, available); err != nil {
			return errors.Internal("Could not update bed", err)
		}
		bed.IsAvailable = available
		result.Bed = bed
		if !available {
			return nil
		}

		live, err := tx.Bookings().ListByBed(ctx, bed.ID, models.LiveStatuses...)
		if err != nil {
			return errors.Internal("Could not load bed bookings", err)
		}
		now := s.bookings.clock()
		for i := range live {
			b := &live[i]
			fields := models.MarkCancelled(b, now)
			if len(fields) == 0 {
				continue
			}
			if err := tx.Bookings().Update(ctx, b, fields...); err != nil {
				return errors.Internal("Could not cancel booking", err)
			}
			result.Cancelled = append(result.Cancelled, b.ID)
			affected = append(affected, *b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(affected) > 0 {
		s.logger.Info("bed %d re-enabled, cancelled %d bookings", bedID, len(affected))
	}
	for i := range affected {
		s.bookings.notifyStudent(ctx, constants.NotifyBookingCancelled, &affected[i])
	}
	return result, nil
}

// AvailableBeds giường trống của owner, dùng khi tạo booking offline
func (s *InventoryService) AvailableBeds(ctx context.Context, actor *Actor) ([]dto.AvailableBed, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	beds, err := s.store.Beds().ListAvailableByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("Could not load beds", err)
	}
	out := make([]dto.AvailableBed, 0, len(beds))
	for _, bed := range beds {
		item := dto.AvailableBed{ID: bed.ID, Identifier: bed.Identifier}
		if room := bed.Room; room != nil {
			item.RoomNumber = room.RoomNumber
			item.Price = room.PricePerBed
			if room.PG != nil {
				item.PGID = room.PG.ID
				item.PGName = room.PG.Name
			}
		}
		item.Label = fmt.Sprintf("%s - Room %s - Bed %s", item.PGName, item.RoomNumber, item.Identifier)
		out = append(out, item)
	}
	return out, nil
}
