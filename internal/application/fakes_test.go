package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
	bikeDomain "github.com/ecoride-campus/service-rental/internal/domain/bike"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
	"github.com/ecoride-campus/service-rental/internal/domain/rental"
	"github.com/ecoride-campus/service-rental/internal/kafka"
)

// The fakes store defensive clones so aggregates held by a test cannot
// mutate repository state behind the service's back, mimicking a real
// row store. snapshot returns a restore closure so the fake transactor
// can roll state back when the transactional function fails.

type snapshotter interface {
	snapshot() func()
}

// --- Booking repository fake ---

type fakeBookingRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*rental.Booking
	saveErr error
	updErr  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*rental.Booking)}
}

func cloneBooking(bk *rental.Booking) *rental.Booking {
	return rental.ReconstructBooking(
		bk.ID(), bk.Reference(), bk.UserID(), bk.BikeID(),
		bk.StartTime(), bk.EndTime(), bk.ExpectedDurationHours(), bk.ActualReturnTime(),
		bk.Status(), bk.WardenApproved(), bk.AdminApproved(),
		bk.TotalCostCents(), bk.OvertimeChargeCents(), bk.DamageChargeCents(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]*rental.Booking, len(r.byID))
	for id, bk := range r.byID {
		saved[id] = bk
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID = saved
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*rental.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*rental.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.byID {
		if bk.Reference() == reference {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]*rental.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rental.Booking
	for _, bk := range r.byID {
		if bk.UserID() == userID {
			out = append(out, cloneBooking(bk))
		}
	}
	sortBookingsNewestFirst(out)
	return paginateBookings(out, page, limit), int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByStatuses(_ context.Context, statuses []rental.BookingStatus, page, limit int) ([]*rental.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rental.Booking
	for _, bk := range r.byID {
		for _, s := range statuses {
			if bk.Status() == s {
				out = append(out, cloneBooking(bk))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return paginateBookings(out, page, limit), int64(len(out)), nil
}

func (r *fakeBookingRepo) CountOverlapping(_ context.Context, bikeID uuid.UUID, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, bk := range r.byID {
		if bk.BikeID() != bikeID || bk.Status().IsTerminal() {
			continue
		}
		if bk.OverlapsInterval(start, end) {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*rental.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*rental.Booking, 0, len(r.byID))
	for _, bk := range r.byID {
		out = append(out, cloneBooking(bk))
	}
	sortBookingsNewestFirst(out)
	return paginateBookings(out, page, limit), int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.byID {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) SumReturnedTotalCents(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, bk := range r.byID {
		if bk.Status() == rental.StatusReturned {
			sum += bk.TotalCostCents()
		}
	}
	return sum, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *rental.Booking) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *rental.Booking) error {
	if r.updErr != nil {
		return r.updErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if current.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.byID[bk.ID()] = cloneBooking(bk)
	return nil
}

func sortBookingsNewestFirst(bookings []*rental.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt().After(bookings[j].CreatedAt()) })
}

func paginateBookings(bookings []*rental.Booking, page, limit int) []*rental.Booking {
	start := (page - 1) * limit
	if start >= len(bookings) {
		return nil
	}
	end := start + limit
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[start:end]
}

// --- Bike repository fake ---

type fakeBikeRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*bikeDomain.Bike
	updErr error
}

func newFakeBikeRepo() *fakeBikeRepo {
	return &fakeBikeRepo{byID: make(map[uuid.UUID]*bikeDomain.Bike)}
}

func cloneBike(b *bikeDomain.Bike) *bikeDomain.Bike {
	return bikeDomain.Reconstruct(
		b.ID(), b.Name(), b.Description(), b.ImageURL(), b.Station(),
		b.PricePerHourCents(), b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *fakeBikeRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]*bikeDomain.Bike, len(r.byID))
	for id, b := range r.byID {
		saved[id] = b
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID = saved
	}
}

func (r *fakeBikeRepo) FindByID(_ context.Context, id uuid.UUID) (*bikeDomain.Bike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Bike", id.String())
	}
	return cloneBike(b), nil
}

func (r *fakeBikeRepo) ListAll(_ context.Context, page, limit int) ([]*bikeDomain.Bike, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bikeDomain.Bike, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, cloneBike(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, int64(len(out)), nil
}

func (r *fakeBikeRepo) ListByStatus(_ context.Context, status bikeDomain.BikeStatus, page, limit int) ([]*bikeDomain.Bike, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bikeDomain.Bike
	for _, b := range r.byID {
		if b.Status() == status {
			out = append(out, cloneBike(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, int64(len(out)), nil
}

func (r *fakeBikeRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.byID {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *fakeBikeRepo) Save(_ context.Context, b *bikeDomain.Bike) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID()] = cloneBike(b)
	return nil
}

func (r *fakeBikeRepo) Update(_ context.Context, b *bikeDomain.Bike) error {
	if r.updErr != nil {
		return r.updErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[b.ID()]; !ok {
		return domain.NewNotFoundError("Bike", b.ID().String())
	}
	r.byID[b.ID()] = cloneBike(b)
	return nil
}

func (r *fakeBikeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.NewNotFoundError("Bike", id.String())
	}
	delete(r.byID, id)
	return nil
}

// --- Receipt repository fake ---

type fakeReceiptRepo struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID]*rental.Receipt
	saveErr   error
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{byBooking: make(map[uuid.UUID]*rental.Receipt)}
}

func (r *fakeReceiptRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]*rental.Receipt, len(r.byBooking))
	for id, rc := range r.byBooking {
		saved[id] = rc
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byBooking = saved
	}
}

func (r *fakeReceiptRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*rental.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("Receipt", bookingID.String())
	}
	return rc, nil
}

func (r *fakeReceiptRepo) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]*rental.Receipt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rental.Receipt
	for _, rc := range r.byBooking {
		if rc.UserID() == userID {
			out = append(out, rc)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReceiptRepo) Save(_ context.Context, receipt *rental.Receipt) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byBooking[receipt.BookingID()] = receipt
	return nil
}

// --- Damage report repository fake ---

type fakeDamageReportRepo struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID][]*rental.DamageReport
	saveErr   error
}

func newFakeDamageReportRepo() *fakeDamageReportRepo {
	return &fakeDamageReportRepo{byBooking: make(map[uuid.UUID][]*rental.DamageReport)}
}

func (r *fakeDamageReportRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID][]*rental.DamageReport, len(r.byBooking))
	for id, reports := range r.byBooking {
		saved[id] = append([]*rental.DamageReport(nil), reports...)
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byBooking = saved
	}
}

func (r *fakeDamageReportRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*rental.DamageReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*rental.DamageReport(nil), r.byBooking[bookingID]...), nil
}

func (r *fakeDamageReportRepo) Save(_ context.Context, report *rental.DamageReport) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byBooking[report.BookingID()] = append(r.byBooking[report.BookingID()], report)
	return nil
}

// --- Profile repository fake ---

type fakeProfileRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*profile.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[uuid.UUID]*profile.Profile)}
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Profile", id.String())
	}
	return p, nil
}

func (r *fakeProfileRepo) ListAll(_ context.Context, page, limit int) ([]*profile.Profile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*profile.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProfileRepo) Save(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID()] = p
	return nil
}

// --- Transactor fake ---

// fakeTransactor snapshots every registered repo before running the
// transactional function and restores them when it fails, so tests can
// assert that nothing leaked out of a rolled-back transaction.
type fakeTransactor struct {
	repos []snapshotter
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(t.repos))
	for _, r := range t.repos {
		restores = append(restores, r.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// --- Publisher fake ---

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.event.Type
	}
	return types
}
