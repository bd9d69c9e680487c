package hotel

import (
	"testing"
	"time"

	"acenta-backend/internal/models"
	"acenta-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAdapter test için programlanabilir push adaptörü.
type fakeAdapter struct {
	results []pushResult
	calls   int
}

func (f *fakeAdapter) Push(_ *models.Hotel, _ *pushPayload) pushResult {
	var r pushResult
	if f.calls < len(f.results) {
		r = f.results[f.calls]
	} else if len(f.results) > 0 {
		r = f.results[len(f.results)-1]
	}
	f.calls++
	return r
}

func newTestPushService(db *gorm.DB, adapter pushAdapter) *PushService {
	return &PushService{
		db: db,
		adapters: map[models.PushMethod]pushAdapter{
			models.PushMethodJSON: adapter,
		},
	}
}

func newTestHotel(t *testing.T, db *gorm.DB, companyID uint) *models.Hotel {
	t.Helper()
	h := models.Hotel{
		CompanyID:    companyID,
		Name:         "Test Otel",
		PushMethod:   models.PushMethodJSON,
		PushEndpoint: "https://example.test/webhook",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&h).Error)
	return &h
}

func newTestReservation(t *testing.T, db *gorm.DB, hotel *models.Hotel) *models.HotelReservation {
	t.Helper()
	r := models.HotelReservation{
		HotelID:      hotel.ID,
		CompanyID:    hotel.CompanyID,
		CustomerName: "Ali Veli",
		CheckinDate:  "2026-09-10",
		CheckoutDate: "2026-09-12",
		GuestCount:   2,
		Status:       "confirmed",
		PushStatus:   models.PushStatusPending,
	}
	require.NoError(t, db.Create(&r).Error)
	return &r
}

func TestBackoffDelaySchedule(t *testing.T) {
	cases := []struct {
		attempts int
		expected time.Duration
	}{
		{1, 2 * time.Minute},
		{2, 4 * time.Minute},
		{3, 8 * time.Minute},
		{4, 16 * time.Minute},
		{5, 32 * time.Minute},
		{6, 60 * time.Minute}, // 64 -> 60'a kırpılır
		{10, 60 * time.Minute},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, backoffDelay(tc.attempts), "deneme sayısı %d", tc.attempts)
	}
}

func TestDispatchSuccessMarksSent(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	svc := newTestPushService(db, &fakeAdapter{results: []pushResult{{Success: true}}})
	svc.Dispatch(reservation.ID)

	var fresh models.HotelReservation
	require.NoError(t, db.First(&fresh, reservation.ID).Error)
	assert.Equal(t, models.PushStatusSent, fresh.PushStatus)

	var queueCount int64
	require.NoError(t, db.Model(&models.HotelReservationPushQueue{}).Count(&queueCount).Error)
	assert.Zero(t, queueCount, "başarılı push kuyruğa yazmamalı")

	var logEntry models.HotelReservationPushLog
	require.NoError(t, db.First(&logEntry, "reservation_id = ?", reservation.ID).Error)
	assert.True(t, logEntry.Success)
}

func TestDispatchFailureEnqueuesWithBackoff(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	before := time.Now()
	svc := newTestPushService(db, &fakeAdapter{results: []pushResult{{ErrorMessage: "bağlantı reddedildi"}}})
	svc.Dispatch(reservation.ID)

	var item models.HotelReservationPushQueue
	require.NoError(t, db.First(&item, "reservation_id = ?", reservation.ID).Error)
	assert.Equal(t, models.QueueStatusQueued, item.Status)
	assert.Equal(t, 1, item.AttemptCount)
	assert.Equal(t, models.PushMaxAttempts, item.MaxAttempts)
	assert.Equal(t, "bağlantı reddedildi", item.Error)
	require.NotNil(t, item.NextRetryAt)

	// İlk başarısızlık sonrası bekleme ~2 dakika
	delay := item.NextRetryAt.Sub(before)
	assert.InDelta(t, (2 * time.Minute).Seconds(), delay.Seconds(), 5)

	var fresh models.HotelReservation
	require.NoError(t, db.First(&fresh, reservation.ID).Error)
	assert.Equal(t, models.PushStatusQueued, fresh.PushStatus)
}

func TestProcessQueueRespectsNextRetryAt(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	future := time.Now().Add(30 * time.Minute)
	item := models.HotelReservationPushQueue{
		HotelID: hotel.ID, ReservationID: reservation.ID, CompanyID: company.ID,
		Payload: `{"reservation_id":1}`, PushMethod: models.PushMethodJSON,
		AttemptCount: 1, MaxAttempts: models.PushMaxAttempts,
		NextRetryAt: &future, Status: models.QueueStatusQueued,
	}
	require.NoError(t, db.Create(&item).Error)

	adapter := &fakeAdapter{results: []pushResult{{Success: true}}}
	svc := newTestPushService(db, adapter)

	processed := svc.ProcessQueue(10)
	assert.Zero(t, processed, "zamanı gelmemiş kayıt işlenmemeli")
	assert.Zero(t, adapter.calls)
}

func TestProcessQueueExhaustionMarksFailed(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	due := time.Now().Add(-time.Minute)
	item := models.HotelReservationPushQueue{
		HotelID: hotel.ID, ReservationID: reservation.ID, CompanyID: company.ID,
		Payload: `{"reservation_id":1}`, PushMethod: models.PushMethodJSON,
		AttemptCount: models.PushMaxAttempts - 1, MaxAttempts: models.PushMaxAttempts,
		NextRetryAt: &due, Status: models.QueueStatusQueued,
	}
	require.NoError(t, db.Create(&item).Error)

	adapter := &fakeAdapter{results: []pushResult{{ErrorMessage: "hala ulaşılamıyor"}}}
	svc := newTestPushService(db, adapter)

	processed := svc.ProcessQueue(10)
	require.Equal(t, 1, processed)

	var fresh models.HotelReservationPushQueue
	require.NoError(t, db.First(&fresh, item.ID).Error)
	assert.Equal(t, models.QueueStatusFailed, fresh.Status)
	assert.Equal(t, models.PushMaxAttempts, fresh.AttemptCount)
	assert.Nil(t, fresh.NextRetryAt)

	var freshRes models.HotelReservation
	require.NoError(t, db.First(&freshRes, reservation.ID).Error)
	assert.Equal(t, models.PushStatusFailed, freshRes.PushStatus)

	// Terminal kayıt sonraki süpürmelerde alınmaz
	processed = svc.ProcessQueue(10)
	assert.Zero(t, processed)
	assert.Equal(t, 1, adapter.calls)
}

func TestProcessQueueRetrySuccessAfterFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	due := time.Now().Add(-time.Minute)
	item := models.HotelReservationPushQueue{
		HotelID: hotel.ID, ReservationID: reservation.ID, CompanyID: company.ID,
		Payload: `{"reservation_id":1}`, PushMethod: models.PushMethodJSON,
		AttemptCount: 2, MaxAttempts: models.PushMaxAttempts,
		NextRetryAt: &due, Status: models.QueueStatusQueued,
	}
	require.NoError(t, db.Create(&item).Error)

	svc := newTestPushService(db, &fakeAdapter{results: []pushResult{{Success: true}}})
	require.Equal(t, 1, svc.ProcessQueue(10))

	var fresh models.HotelReservationPushQueue
	require.NoError(t, db.First(&fresh, item.ID).Error)
	assert.Equal(t, models.QueueStatusSent, fresh.Status)
	assert.Empty(t, fresh.Error)

	var freshRes models.HotelReservation
	require.NoError(t, db.First(&freshRes, reservation.ID).Error)
	assert.Equal(t, models.PushStatusSent, freshRes.PushStatus)
}

func TestManualRetryResetsFailedItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	hotel := newTestHotel(t, db, company.ID)
	reservation := newTestReservation(t, db, hotel)

	item := models.HotelReservationPushQueue{
		HotelID: hotel.ID, ReservationID: reservation.ID, CompanyID: company.ID,
		Payload: `{"reservation_id":1}`, PushMethod: models.PushMethodJSON,
		AttemptCount: models.PushMaxAttempts, MaxAttempts: models.PushMaxAttempts,
		Status: models.QueueStatusFailed, Error: "kalıcı hata",
	}
	require.NoError(t, db.Create(&item).Error)

	svc := newTestPushService(db, &fakeAdapter{})
	reset, err := svc.RetryNow(company.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusQueued, reset.Status)
	assert.Zero(t, reset.AttemptCount)
	assert.Empty(t, reset.Error)
	require.NotNil(t, reset.NextRetryAt)
}

func TestTruncateErrorLimits(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncateError(string(long)), 500)
	assert.Equal(t, "kısa", truncateError("kısa"))
}
