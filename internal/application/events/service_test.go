package events

import (
	"testing"

	"need1-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEventsTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Request{}, &domain.Offer{}, &domain.RequestEvent{}))
	return &Service{DB: db}, db
}

func TestListByRequest(t *testing.T) {
	svc, db := setupEventsTest(t)
	req := &domain.Request{
		SeekerID: uuid.New(), Title: "x", Description: "y", Category: "Other",
		Status: domain.RequestOpen, Version: 1,
	}
	require.NoError(t, db.Create(req).Error)

	actor := uuid.New()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := Append(tx, req.RequestID, domain.EventRequestCreated, actor, nil); err != nil {
			return err
		}
		return Append(tx, req.RequestID, domain.EventOfferSubmitted, actor, map[string]interface{}{"amount": 5})
	}))

	list, err := svc.ListByRequest(req.RequestID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.EventRequestCreated, list[0].EventType)
	assert.Equal(t, domain.EventOfferSubmitted, list[1].EventType)
}

func TestGetUserEvents(t *testing.T) {
	svc, db := setupEventsTest(t)
	maya := uuid.New()
	other := uuid.New()

	// Maya owns one request, bid on another, and a third doesn't touch her
	owned := &domain.Request{SeekerID: maya, Title: "a", Description: "y", Category: "Other", Status: domain.RequestOpen, Version: 1}
	bidOn := &domain.Request{SeekerID: other, Title: "b", Description: "y", Category: "Other", Status: domain.RequestOpen, Version: 1}
	unrelated := &domain.Request{SeekerID: other, Title: "c", Description: "y", Category: "Other", Status: domain.RequestOpen, Version: 1}
	require.NoError(t, db.Create(owned).Error)
	require.NoError(t, db.Create(bidOn).Error)
	require.NoError(t, db.Create(unrelated).Error)
	require.NoError(t, db.Create(&domain.Offer{
		RequestID: bidOn.RequestID, BidderID: maya, Amount: 5, Status: domain.OfferPending,
	}).Error)

	require.NoError(t, Append(db, owned.RequestID, domain.EventRequestCreated, maya, nil))
	require.NoError(t, Append(db, bidOn.RequestID, domain.EventOfferSubmitted, maya, nil))
	require.NoError(t, Append(db, unrelated.RequestID, domain.EventRequestCreated, other, nil))

	feed, err := svc.GetUserEvents(maya)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, e := range feed {
		assert.NotEqual(t, unrelated.RequestID, e.RequestID)
	}
}

func TestListByRequestNotFound(t *testing.T) {
	svc, _ := setupEventsTest(t)
	_, err := svc.ListByRequest(uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
