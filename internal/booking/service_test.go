package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

type fakeResidents map[string]model.Resident

func (f fakeResidents) GetByID(_ context.Context, id string) (model.Resident, error) {
	r, ok := f[id]
	if !ok {
		return model.Resident{}, repository.ErrNotFound
	}
	return r, nil
}

type fakeAreas map[string]model.CommonArea

func (f fakeAreas) GetByID(_ context.Context, id string) (model.CommonArea, error) {
	a, ok := f[id]
	if !ok {
		return model.CommonArea{}, repository.ErrNotFound
	}
	return a, nil
}

// fakeReservations mirrors the repository contract: CountOverlapping
// runs the closed-interval test and Create rechecks it before
// appending, returning repository.ErrSlotTaken on conflict.
type fakeReservations struct {
	rows      []model.CommonAreaReservation
	createErr error
}

func (f *fakeReservations) CountOverlapping(_ context.Context, areaID, date, start, end string) (int, error) {
	n := 0
	for _, r := range f.rows {
		if r.CommonAreaID == areaID && r.ReservationDate == date &&
			r.StartTime <= end && r.EndTime >= start {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservations) Create(ctx context.Context, v *model.CommonAreaReservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n, _ := f.CountOverlapping(ctx, v.CommonAreaID, v.ReservationDate, v.StartTime, v.EndTime); n > 0 {
		return repository.ErrSlotTaken
	}
	v.ID = "generated-id"
	f.rows = append(f.rows, *v)
	return nil
}

func newTestService(store *fakeReservations) *Service {
	residents := fakeResidents{
		"res-1": {ID: "res-1", Matricula: "COND-001", NomeCompleto: "Carlos Pereira", Unidade: "Apto 101"},
		"res-9": {ID: "res-9", Matricula: "COND-999", NomeCompleto: "Outro Morador", Unidade: "Casa 9"},
	}
	areas := fakeAreas{
		"area-1": {ID: "area-1", Matricula: "COND-001", Name: "Salão de Festas"},
		"area-2": {ID: "area-2", Matricula: "COND-001", Name: "Churrasqueira"},
	}
	svc := NewService(residents, areas, store, nil)
	svc.Now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func seededStore() *fakeReservations {
	return &fakeReservations{rows: []model.CommonAreaReservation{{
		ID:              "existing-1",
		CommonAreaID:    "area-1",
		ResidentID:      "res-1",
		ReservationDate: "2025-06-10",
		StartTime:       "10:00",
		EndTime:         "12:00",
		Status:          model.ReservationApproved,
	}}}
}

func req(areaID, date, start, end string) ReserveRequest {
	return ReserveRequest{
		CommonAreaID: areaID,
		ResidentID:   "res-1",
		Date:         date,
		StartTime:    start,
		EndTime:      end,
	}
}

func TestReserveConflicts(t *testing.T) {
	t.Run("overlapping interval is rejected", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-1", "2025-06-10", "11:30", "12:30"))
		assert.ErrorIs(t, err, repository.ErrSlotTaken)
		assert.Len(t, store.rows, 1)
	})

	t.Run("start touching the existing end is rejected", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-1", "2025-06-10", "12:00", "13:00"))
		assert.ErrorIs(t, err, repository.ErrSlotTaken)
		assert.Len(t, store.rows, 1)
	})

	t.Run("end touching the existing start is rejected", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-1", "2025-06-10", "09:00", "10:00"))
		assert.ErrorIs(t, err, repository.ErrSlotTaken)
		assert.Len(t, store.rows, 1)
	})

	t.Run("one minute after the boundary is accepted", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		v, err := svc.Reserve(context.Background(), req("area-1", "2025-06-10", "13:01", "14:00"))
		require.NoError(t, err)
		assert.Equal(t, model.ReservationPending, v.Status)
		assert.Equal(t, "generated-id", v.ID)
		assert.Len(t, store.rows, 2)
	})

	t.Run("same slot on another date is accepted", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-1", "2025-06-11", "10:00", "12:00"))
		assert.NoError(t, err)
	})

	t.Run("same slot on another area is accepted", func(t *testing.T) {
		store := seededStore()
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-2", "2025-06-10", "10:00", "12:00"))
		assert.NoError(t, err)
	})

	t.Run("store-level conflict passes through unchanged", func(t *testing.T) {
		// Mimics the locking recheck catching a race the pre-check
		// could not see.
		store := &fakeReservations{createErr: repository.ErrSlotTaken}
		svc := newTestService(store)
		_, err := svc.Reserve(context.Background(), req("area-1", "2025-06-10", "15:00", "16:00"))
		assert.ErrorIs(t, err, repository.ErrSlotTaken)
	})
}

func TestReserveValidation(t *testing.T) {
	svc := newTestService(seededStore())
	ctx := context.Background()

	t.Run("unparseable date", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "10/06/2025", "10:00", "11:00"))
		assert.ErrorIs(t, err, ErrBadDate)
	})

	t.Run("past date", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "2025-05-31", "10:00", "11:00"))
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("today is not past", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "2025-06-01", "10:00", "11:00"))
		assert.NoError(t, err)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "2025-06-10", "15:00", "14:00"))
		assert.ErrorIs(t, err, ErrBadTimeRange)
	})

	t.Run("zero-length interval", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "2025-06-10", "15:00", "15:00"))
		assert.ErrorIs(t, err, ErrBadTimeRange)
	})

	t.Run("malformed clock", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("area-1", "2025-06-10", "9:00", "10:00"))
		assert.ErrorIs(t, err, ErrBadTimeRange)
	})

	t.Run("unknown resident", func(t *testing.T) {
		r := req("area-1", "2025-06-10", "15:00", "16:00")
		r.ResidentID = "ghost"
		_, err := svc.Reserve(ctx, r)
		assert.ErrorIs(t, err, ErrResidentNotFound)
	})

	t.Run("missing resident id", func(t *testing.T) {
		r := req("area-1", "2025-06-10", "15:00", "16:00")
		r.ResidentID = ""
		_, err := svc.Reserve(ctx, r)
		assert.ErrorIs(t, err, ErrResidentNotFound)
	})

	t.Run("unknown area", func(t *testing.T) {
		_, err := svc.Reserve(ctx, req("ghost", "2025-06-10", "15:00", "16:00"))
		assert.ErrorIs(t, err, ErrAreaNotFound)
	})

	t.Run("area of another condominium", func(t *testing.T) {
		r := req("area-1", "2025-06-10", "15:00", "16:00")
		r.ResidentID = "res-9"
		_, err := svc.Reserve(ctx, r)
		assert.ErrorIs(t, err, ErrWrongCondominium)
	})
}

func TestValidClock(t *testing.T) {
	assert.True(t, validClock("00:00"))
	assert.True(t, validClock("23:59"))
	assert.False(t, validClock("24:00"))
	assert.False(t, validClock("9:00"))
	assert.False(t, validClock("09:60"))
	assert.False(t, validClock("0900"))
	assert.False(t, validClock(""))
}
