package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoride-campus/service-rental/internal/domain"
	bikeDomain "github.com/ecoride-campus/service-rental/internal/domain/bike"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
	"github.com/ecoride-campus/service-rental/internal/domain/rental"
	"github.com/ecoride-campus/service-rental/internal/events"
	"github.com/ecoride-campus/service-rental/internal/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	BikeID        uuid.UUID `json:"bike_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	DurationHours int       `json:"duration_hours" binding:"required"`
}

// ReportDamageRequest holds the data needed to file a damage report.
type ReportDamageRequest struct {
	Description       string `json:"description" binding:"required"`
	ChargeAmountCents int64  `json:"charge_amount_cents"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                    uuid.UUID  `json:"id"`
	Reference             string     `json:"reference"`
	UserID                uuid.UUID  `json:"user_id"`
	BikeID                uuid.UUID  `json:"bike_id"`
	StartTime             time.Time  `json:"start_time"`
	EndTime               time.Time  `json:"end_time"`
	ExpectedDurationHours int        `json:"expected_duration_hours"`
	ActualReturnTime      *time.Time `json:"actual_return_time,omitempty"`
	Status                string     `json:"status"`
	WardenApproved        bool       `json:"warden_approved"`
	AdminApproved         bool       `json:"admin_approved"`
	TotalCostCents        int64      `json:"total_cost_cents"`
	OvertimeChargeCents   int64      `json:"overtime_charge_cents"`
	DamageChargeCents     int64      `json:"damage_charge_cents"`
	Version               int64      `json:"version"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ReceiptDTO is the response representation of a receipt.
type ReceiptDTO struct {
	ID                  uuid.UUID `json:"id"`
	BookingID           uuid.UUID `json:"booking_id"`
	UserID              uuid.UUID `json:"user_id"`
	BaseCostCents       int64     `json:"base_cost_cents"`
	OvertimeChargeCents int64     `json:"overtime_charge_cents"`
	DamageChargeCents   int64     `json:"damage_charge_cents"`
	TotalAmountCents    int64     `json:"total_amount_cents"`
	CreatedAt           time.Time `json:"created_at"`
}

// DamageReportDTO is the response representation of a damage report.
type DamageReportDTO struct {
	ID                uuid.UUID `json:"id"`
	BookingID         uuid.UUID `json:"booking_id"`
	WardenID          uuid.UUID `json:"warden_id"`
	Description       string    `json:"description"`
	ChargeAmountCents int64     `json:"charge_amount_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReturnResultDTO bundles the returned booking with its receipt.
type ReturnResultDTO struct {
	Booking BookingDTO `json:"booking"`
	Receipt ReceiptDTO `json:"receipt"`
}

// RentalService is the application service orchestrating the booking
// lifecycle: request, approval gating, activation, return processing
// and damage reporting.
type RentalService struct {
	bookings  rental.BookingRepository
	bikes     bikeDomain.BikeRepository
	receipts  rental.ReceiptRepository
	damages   rental.DamageReportRepository
	profiles  profile.ProfileRepository
	tx        domain.Transactor
	publisher events.Publisher
	logger    *zap.Logger
}

// NewRentalService creates a new RentalService.
func NewRentalService(
	bookings rental.BookingRepository,
	bikes bikeDomain.BikeRepository,
	receipts rental.ReceiptRepository,
	damages rental.DamageReportRepository,
	profiles profile.ProfileRepository,
	tx domain.Transactor,
	publisher events.Publisher,
	logger *zap.Logger,
) *RentalService {
	return &RentalService{
		bookings:  bookings,
		bikes:     bikes,
		receipts:  receipts,
		damages:   damages,
		profiles:  profiles,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking creates a pending booking for the acting renter. The
// availability and slot-overlap checks run in the same transaction as
// the insert so two racing requests cannot both pass the check.
func (s *RentalService) CreateBooking(ctx context.Context, actor profile.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	if err := authorize(OpCreateBooking, actor); err != nil {
		return nil, err
	}
	if req.DurationHours <= 0 {
		return nil, domain.NewValidationError("duration must be a positive number of hours")
	}
	if _, err := s.profiles.FindByID(ctx, actor.ID); err != nil {
		return nil, err
	}

	var bk *rental.Booking
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		bike, err := s.bikes.FindByID(txCtx, req.BikeID)
		if err != nil {
			return err
		}
		if !bike.IsAvailable() {
			return domain.NewBikeUnavailableError(fmt.Sprintf("bike %s is %s", bike.ID(), bike.Status()))
		}

		start := req.StartTime.UTC()
		end := start.Add(time.Duration(req.DurationHours) * time.Hour)
		overlapping, err := s.bookings.CountOverlapping(txCtx, req.BikeID, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return domain.NewSlotConflictError("the requested time slot overlaps an existing booking for this bike")
		}

		bk, err = rental.NewBooking(actor.ID, req.BikeID, start, req.DurationHours, bike.PricePerHourCents())
		if err != nil {
			return err
		}
		return s.bookings.Save(txCtx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalRequested, events.RentalRequestedEvent{
		BookingID:      bk.ID(),
		Reference:      bk.Reference(),
		UserID:         bk.UserID(),
		BikeID:         bk.BikeID(),
		StartTime:      bk.StartTime(),
		EndTime:        bk.EndTime(),
		TotalCostCents: bk.TotalCostCents(),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ApproveAsWarden records warden approval on a pending or approved booking.
func (s *RentalService) ApproveAsWarden(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := authorize(OpApproveAsWarden, actor); err != nil {
		return nil, err
	}
	return s.approve(ctx, actor, bookingID, (*rental.Booking).ApproveByWarden)
}

// ApproveAsAdmin records admin approval on a pending or approved booking.
func (s *RentalService) ApproveAsAdmin(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := authorize(OpApproveAsAdmin, actor); err != nil {
		return nil, err
	}
	return s.approve(ctx, actor, bookingID, (*rental.Booking).ApproveByAdmin)
}

func (s *RentalService) approve(ctx context.Context, actor profile.Actor, bookingID uuid.UUID, approveFn func(*rental.Booking) error) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	prevStatus := bk.Status()
	prevWarden, prevAdmin := bk.WardenApproved(), bk.AdminApproved()
	if err := approveFn(bk); err != nil {
		return nil, err
	}

	// Re-approval by the same role changes nothing; skip the write and
	// the duplicate event.
	if bk.Status() == prevStatus && bk.WardenApproved() == prevWarden && bk.AdminApproved() == prevAdmin {
		result := toBookingDTO(bk)
		return &result, nil
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalApproved, events.RentalApprovedEvent{
		BookingID:      bk.ID(),
		Reference:      bk.Reference(),
		ApprovedByRole: string(actor.Role),
		WardenApproved: bk.WardenApproved(),
		AdminApproved:  bk.AdminApproved(),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RejectAsWarden rejects a pending booking. Terminal; the bike is untouched.
func (s *RentalService) RejectAsWarden(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := authorize(OpRejectAsWarden, actor); err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Reject(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalRejected, events.RentalRejectedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		UserID:     bk.UserID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ActivateRental hands the bike over: booking goes active and the bike
// goes rented in one transaction, so a failed bike write rolls the
// booking back.
func (s *RentalService) ActivateRental(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := authorize(OpActivateRental, actor); err != nil {
		return nil, err
	}

	var bk *rental.Booking
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		bk, err = s.bookings.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		if err := bk.Activate(); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := s.bookings.Update(txCtx, bk); err != nil {
			return err
		}

		bike, err := s.bikes.FindByID(txCtx, bk.BikeID())
		if err != nil {
			return err
		}
		if err := bike.MarkRented(); err != nil {
			return err
		}
		return s.bikes.Update(txCtx, bike)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalActivated, events.RentalActivatedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		BikeID:     bk.BikeID(),
		UserID:     bk.UserID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmReturn processes a return at the given time: the booking is
// finalized with overtime and damage charges, the bike becomes
// available again, and the receipt is created. All three writes are one
// transaction; a failure leaves no partial state and no receipt.
func (s *RentalService) ConfirmReturn(ctx context.Context, actor profile.Actor, bookingID uuid.UUID, now time.Time) (*ReturnResultDTO, error) {
	if err := authorize(OpConfirmReturn, actor); err != nil {
		return nil, err
	}

	var (
		bk      *rental.Booking
		receipt *rental.Receipt
	)
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		bk, err = s.bookings.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		baseCost := bk.TotalCostCents()
		if err := bk.ConfirmReturn(now); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := s.bookings.Update(txCtx, bk); err != nil {
			return err
		}

		bike, err := s.bikes.FindByID(txCtx, bk.BikeID())
		if err != nil {
			return err
		}
		bike.MarkAvailable()
		if err := s.bikes.Update(txCtx, bike); err != nil {
			return err
		}

		receipt, err = rental.NewReceipt(bk.ID(), bk.UserID(), baseCost, bk.OvertimeChargeCents(), bk.DamageChargeCents())
		if err != nil {
			return err
		}
		return s.receipts.Save(txCtx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalReturned, events.RentalReturnedEvent{
		BookingID:           bk.ID(),
		Reference:           bk.Reference(),
		BikeID:              bk.BikeID(),
		UserID:              bk.UserID(),
		ReturnedAt:          *bk.ActualReturnTime(),
		OvertimeChargeCents: bk.OvertimeChargeCents(),
		DamageChargeCents:   bk.DamageChargeCents(),
		TotalAmountCents:    receipt.TotalAmountCents(),
		OccurredAt:          time.Now().UTC(),
	})

	return &ReturnResultDTO{
		Booking: toBookingDTO(bk),
		Receipt: toReceiptDTO(receipt),
	}, nil
}

// ReportDamage files a damage report against a booking. Before return
// the booking's damage charge is updated to the filed amount; after
// return only the report row is created and the receipt stays as issued.
func (s *RentalService) ReportDamage(ctx context.Context, actor profile.Actor, bookingID uuid.UUID, req ReportDamageRequest) (*DamageReportDTO, error) {
	if err := authorize(OpReportDamage, actor); err != nil {
		return nil, err
	}

	report, err := rental.NewDamageReport(bookingID, actor.ID, req.Description, req.ChargeAmountCents)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		bk, err := s.bookings.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		// The booking's charge only ever rises. A report filing a lower
		// or equal amount is still recorded; the booking stays as is.
		if !bk.Status().IsTerminal() && req.ChargeAmountCents > bk.DamageChargeCents() {
			if err := bk.SetDamageCharge(req.ChargeAmountCents); err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := s.bookings.Update(txCtx, bk); err != nil {
				return err
			}
		}
		return s.damages.Save(txCtx, report)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicRentalEvents, events.RentalDamageReported, events.RentalDamageReportedEvent{
		BookingID:         bookingID,
		ReportID:          report.ID(),
		WardenID:          actor.ID,
		ChargeAmountCents: report.ChargeAmountCents(),
		OccurredAt:        time.Now().UTC(),
	})

	result := toDamageReportDTO(report)
	return &result, nil
}

// --- Queries ---

// GetBooking retrieves a single booking. Renters may only read their own.
func (s *RentalService) GetBooking(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role == profile.RoleRenter && bk.UserID() != actor.ID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetRenterBookings retrieves the acting renter's bookings, newest first.
func (s *RentalService) GetRenterBookings(ctx context.Context, actor profile.Actor, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByUserID(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetQueue retrieves bookings in the given statuses for warden work
// queues, oldest first.
func (s *RentalService) GetQueue(ctx context.Context, statuses []rental.BookingStatus, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByStatuses(ctx, statuses, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *RentalService) ListAllBookings(ctx context.Context, actor profile.Actor, page, limit int) ([]BookingDTO, int64, error) {
	if err := authorize(OpListAllBookings, actor); err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetReceipt retrieves the receipt for a returned booking. Renters may
// only read their own.
func (s *RentalService) GetReceipt(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) (*ReceiptDTO, error) {
	receipt, err := s.receipts.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role == profile.RoleRenter && receipt.UserID() != actor.ID {
		return nil, domain.NewForbiddenError("receipt does not belong to this user")
	}
	result := toReceiptDTO(receipt)
	return &result, nil
}

// GetRenterReceipts retrieves the acting renter's receipts.
func (s *RentalService) GetRenterReceipts(ctx context.Context, actor profile.Actor, page, limit int) (*domain.PaginatedResult[ReceiptDTO], error) {
	receipts, total, err := s.receipts.FindByUserID(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReceiptDTO, len(receipts))
	for i, r := range receipts {
		dtos[i] = toReceiptDTO(r)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetDamageReports retrieves all damage reports filed against a
// booking. Renters may only read their own.
func (s *RentalService) GetDamageReports(ctx context.Context, actor profile.Actor, bookingID uuid.UUID) ([]DamageReportDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role == profile.RoleRenter && bk.UserID() != actor.ID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	reports, err := s.damages.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]DamageReportDTO, len(reports))
	for i, r := range reports {
		dtos[i] = toDamageReportDTO(r)
	}
	return dtos, nil
}

// --- Admin statistics ---

// RentalStatsDTO holds aggregate figures for the admin dashboard.
type RentalStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	RevenueCents  int64            `json:"revenue_cents"`
	BikesByStatus map[string]int64 `json:"bikes_by_status"`
}

// GetStats returns booking counts, revenue over returned bookings, and
// fleet counts (admin).
func (s *RentalService) GetStats(ctx context.Context, actor profile.Actor) (*RentalStatsDTO, error) {
	if err := authorize(OpViewStats, actor); err != nil {
		return nil, err
	}

	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	var total int64
	for _, c := range counts {
		total += c
	}

	revenue, err := s.bookings.SumReturnedTotalCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	bikeCounts, err := s.bikes.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bikes by status: %w", err)
	}

	return &RentalStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
		RevenueCents:  revenue,
		BikesByStatus: bikeCounts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *rental.Booking) BookingDTO {
	return BookingDTO{
		ID:                    bk.ID(),
		Reference:             bk.Reference(),
		UserID:                bk.UserID(),
		BikeID:                bk.BikeID(),
		StartTime:             bk.StartTime(),
		EndTime:               bk.EndTime(),
		ExpectedDurationHours: bk.ExpectedDurationHours(),
		ActualReturnTime:      bk.ActualReturnTime(),
		Status:                string(bk.Status()),
		WardenApproved:        bk.WardenApproved(),
		AdminApproved:         bk.AdminApproved(),
		TotalCostCents:        bk.TotalCostCents(),
		OvertimeChargeCents:   bk.OvertimeChargeCents(),
		DamageChargeCents:     bk.DamageChargeCents(),
		Version:               bk.Version(),
		CreatedAt:             bk.CreatedAt(),
		UpdatedAt:             bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*rental.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toReceiptDTO(r *rental.Receipt) ReceiptDTO {
	return ReceiptDTO{
		ID:                  r.ID(),
		BookingID:           r.BookingID(),
		UserID:              r.UserID(),
		BaseCostCents:       r.BaseCostCents(),
		OvertimeChargeCents: r.OvertimeChargeCents(),
		DamageChargeCents:   r.DamageChargeCents(),
		TotalAmountCents:    r.TotalAmountCents(),
		CreatedAt:           r.CreatedAt(),
	}
}

func toDamageReportDTO(r *rental.DamageReport) DamageReportDTO {
	return DamageReportDTO{
		ID:                r.ID(),
		BookingID:         r.BookingID(),
		WardenID:          r.WardenID(),
		Description:       r.Description(),
		ChargeAmountCents: r.ChargeAmountCents(),
		CreatedAt:         r.CreatedAt(),
	}
}

func (s *RentalService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
