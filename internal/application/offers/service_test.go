package offers

import (
	"context"
	"testing"
	"time"

	"need1-backend/internal/application/requests"
	"need1-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOffersTest(t *testing.T) (*Service, *requests.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Request{}, &domain.Offer{},
		&domain.Thread{}, &domain.Message{}, &domain.RequestEvent{},
		&domain.KarmaEntry{},
	))
	reqSvc := &requests.Service{DB: db}
	svc := &Service{DB: db, Requests: reqSvc, Policy: DefaultPolicy()}
	return svc, reqSvc, db
}

func createUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Fullname:     name,
		Email:        name + "@campus.edu",
		PasswordHash: "x",
		Role:         "student",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createOpenRequest(t *testing.T, reqSvc *requests.Service, seekerID uuid.UUID) *domain.Request {
	t.Helper()
	req, err := reqSvc.Create(seekerID, requests.CreateInput{
		Title:       "Help me move a couch",
		Description: "Third floor, no elevator",
		Category:    "Moving",
		Budget:      25,
	})
	require.NoError(t, err)
	return req
}

func TestSubmitOffer(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	bidder := createUser(t, db, "bidder")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), bidder.UserID, SubmitInput{
		RequestID: req.RequestID,
		Message:   "I have a truck",
		Amount:    20,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OfferPending, offer.Status)

	var updated domain.Request
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&updated).Error)
	assert.Equal(t, 1, updated.BidCount)
	assert.Equal(t, req.Version+1, updated.Version)

	var events []domain.RequestEvent
	require.NoError(t, db.Where("request_id = ?", req.RequestID).Find(&events).Error)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, domain.EventOfferSubmitted)
}

func TestSubmitOfferSelfBidRejected(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	_, err := svc.Submit(context.Background(), seeker.UserID, SubmitInput{
		RequestID: req.RequestID,
		Message:   "me",
		Amount:    1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitOfferSelfBidAllowedByPolicy(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	svc.Policy.AllowSelfBid = true
	seeker := createUser(t, db, "seeker")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	_, err := svc.Submit(context.Background(), seeker.UserID, SubmitInput{
		RequestID: req.RequestID,
		Message:   "me",
		Amount:    1,
	})
	assert.NoError(t, err)
}

func TestSubmitOfferDuplicatePending(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	bidder := createUser(t, db, "bidder")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	_, err := svc.Submit(context.Background(), bidder.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 1})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), bidder.UserID, SubmitInput{RequestID: req.RequestID, Message: "b", Amount: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmitOfferOnNonOpenRequest(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	bidder := createUser(t, db, "bidder")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	_, err := reqSvc.Cancel(context.Background(), req.RequestID, seeker.UserID, "student", req.Version)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), bidder.UserID, SubmitInput{RequestID: req.RequestID, Message: "late", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSubmitOfferRequestNotFound(t *testing.T) {
	svc, _, db := setupOffersTest(t)
	bidder := createUser(t, db, "bidder")

	_, err := svc.Submit(context.Background(), bidder.UserID, SubmitInput{RequestID: uuid.New(), Message: "?", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcceptOffer(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offerA, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), bob.UserID, SubmitInput{RequestID: req.RequestID, Message: "b", Amount: 12})
	require.NoError(t, err)

	var current domain.Request
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&current).Error)

	accepted, thread, err := svc.Accept(context.Background(), offerA.OfferID, seeker.UserID, current.Version)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferAccepted, accepted.Status)

	// Request moved to in_progress
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&current).Error)
	assert.Equal(t, domain.RequestInProgress, current.Status)

	// Sibling auto-rejected; exactly one accepted offer
	var counts struct {
		Accepted int64
		Rejected int64
	}
	db.Model(&domain.Offer{}).Where("request_id = ? AND status = ?", req.RequestID, domain.OfferAccepted).Count(&counts.Accepted)
	db.Model(&domain.Offer{}).Where("request_id = ? AND status = ?", req.RequestID, domain.OfferRejected).Count(&counts.Rejected)
	assert.EqualValues(t, 1, counts.Accepted)
	assert.EqualValues(t, 1, counts.Rejected)

	// Thread between seeker and the winning bidder, 7 days of life
	require.NotNil(t, thread)
	assert.Equal(t, seeker.UserID, thread.SeekerID)
	assert.Equal(t, alice.UserID, thread.HelperID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), thread.ExpiresAt, time.Minute)
}

func TestAcceptOfferStaleVersion(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)

	// Version advanced by the submit; the stale reader still holds req.Version
	_, _, err = svc.Accept(context.Background(), offer.OfferID, seeker.UserID, req.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Nothing changed
	var current domain.Request
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&current).Error)
	assert.Equal(t, domain.RequestOpen, current.Status)
	var threads int64
	db.Model(&domain.Thread{}).Where("request_id = ?", req.RequestID).Count(&threads)
	assert.EqualValues(t, 0, threads)
}

func TestAcceptOfferOnlySeeker(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)

	_, _, err = svc.Accept(context.Background(), offer.OfferID, alice.UserID, req.Version+1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAcceptOfferTwice(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)

	_, _, err = svc.Accept(context.Background(), offer.OfferID, seeker.UserID, req.Version+1)
	require.NoError(t, err)

	_, _, err = svc.Accept(context.Background(), offer.OfferID, seeker.UserID, req.Version+2)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDeclineOffer(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)

	declined, err := svc.Decline(context.Background(), offer.OfferID, seeker.UserID, req.Version+1)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferRejected, declined.Status)

	// Request stays open and can take new offers
	var current domain.Request
	require.NoError(t, db.Where("request_id = ?", req.RequestID).First(&current).Error)
	assert.Equal(t, domain.RequestOpen, current.Status)

	_, err = svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "again", Amount: 8})
	assert.NoError(t, err)
}

func TestDeclineOfferNotPending(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offer, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)
	_, err = svc.Decline(context.Background(), offer.OfferID, seeker.UserID, req.Version+1)
	require.NoError(t, err)

	_, err = svc.Decline(context.Background(), offer.OfferID, seeker.UserID, req.Version+2)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

type recordingNotifier struct {
	submitted []string
	accepted  []string
	declined  []string
}

func (n *recordingNotifier) SendOfferNotification(_ context.Context, to, _, _ string) error {
	n.submitted = append(n.submitted, to)
	return nil
}

func (n *recordingNotifier) SendOfferAccepted(_ context.Context, to, _, _ string) error {
	n.accepted = append(n.accepted, to)
	return nil
}

func (n *recordingNotifier) SendOfferDeclined(_ context.Context, to, _, _ string) error {
	n.declined = append(n.declined, to)
	return nil
}

func TestOfferLifecycleNotifications(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	notifier := &recordingNotifier{}
	svc.Notifier = notifier

	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	offerA, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)
	offerB, err := svc.Submit(context.Background(), bob.UserID, SubmitInput{RequestID: req.RequestID, Message: "b", Amount: 12})
	require.NoError(t, err)

	// Seeker hears about each new offer
	assert.Equal(t, []string{seeker.Email, seeker.Email}, notifier.submitted)

	_, err = svc.Decline(context.Background(), offerB.OfferID, seeker.UserID, req.Version+2)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.Email}, notifier.declined)

	_, _, err = svc.Accept(context.Background(), offerA.OfferID, seeker.UserID, req.Version+3)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.Email}, notifier.accepted)
}

func TestListByRequestOnlySeeker(t *testing.T) {
	svc, reqSvc, db := setupOffersTest(t)
	seeker := createUser(t, db, "seeker")
	alice := createUser(t, db, "alice")
	req := createOpenRequest(t, reqSvc, seeker.UserID)

	_, err := svc.Submit(context.Background(), alice.UserID, SubmitInput{RequestID: req.RequestID, Message: "a", Amount: 10})
	require.NoError(t, err)

	offers, err := svc.ListByRequest(req.RequestID, seeker.UserID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	_, err = svc.ListByRequest(req.RequestID, alice.UserID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
