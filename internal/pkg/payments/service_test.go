package payments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/SurplusYard/SurplusYard/app/models"
	"gorm.io/gorm"
)

// fakeRepository mimics the DB-backed repository in memory, including the
// conditional status flip PublishPending relies on for race safety.
type fakeRepository struct {
	mu       sync.Mutex
	pendings map[string]*models.PendingListing
	events   map[string]*models.WebhookEvent
	listings []*models.Listing
	nextID   uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		pendings: make(map[string]*models.PendingListing),
		events:   make(map[string]*models.WebhookEvent),
	}
}

func (f *fakeRepository) CreatePendingListing(pending *models.PendingListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pending
	f.pendings[pending.ID] = &cp
	return nil
}

func (f *fakeRepository) GetPendingListing(id string) (*models.PendingListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pendings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.events[event.Fingerprint]; ok {
		cp := *existing
		return false, &cp, nil
	}
	f.nextID++
	event.ID = f.nextID
	cp := *event
	f.events[event.Fingerprint] = &cp
	out := cp
	return true, &out, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.events {
		if ev.ID == id {
			ev.Processed = true
			ev.ProcessingError = ""
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) RecordWebhookError(id uint, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.events {
		if ev.ID == id {
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) PublishPending(pending *models.PendingListing, imageURLs []string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.pendings[pending.ID]
	if !ok || stored.Status != models.PendingStatusPending {
		return nil, ErrAlreadyPublished
	}
	stored.Status = models.PendingStatusCompleted

	pendingID := pending.ID
	listing := &models.Listing{
		ID:               uint(len(f.listings) + 1),
		PendingListingID: &pendingID,
		SellerID:         pending.SellerID,
		Title:            pending.Title,
		Category:         pending.Category,
		PricePence:       pending.PricePence,
		Lat:              pending.Lat,
		Lng:              pending.Lng,
	}
	for i, url := range imageURLs {
		listing.Images = append(listing.Images, models.ListingImage{URL: url, Position: i})
	}
	f.listings = append(f.listings, listing)
	return listing, nil
}

func (f *fakeRepository) listingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listings)
}

type fakeCheckout struct {
	url string
	err error

	gotAmount   int
	gotRedirect string
	gotRef      string
}

func (f *fakeCheckout) CreatePaymentLink(_ context.Context, amountPence int, redirectURL, referenceID string) (string, error) {
	f.gotAmount = amountPence
	f.gotRedirect = redirectURL
	f.gotRef = referenceID
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testInput() CheckoutInput {
	return CheckoutInput{
		SellerID:   7,
		Title:      "Reclaimed oak beams",
		Category:   models.CategoryTimber,
		PricePence: 2500,
		Lat:        53.6458,
		Lng:        -3.0050,
		Images:     []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
	}
}

func testConfig() Config {
	return Config{
		WebhookSecret:   "testkey",
		ListingFeePence: 100,
		CompleteURL:     "http://localhost:4000/payments/complete",
	}
}

func TestCreatePendingCheckout(t *testing.T) {
	repo := newFakeRepository()
	checkout := &fakeCheckout{url: "https://square.link/abc"}
	svc := NewService(repo, checkout, testConfig())

	pending, checkoutURL, err := svc.CreatePendingCheckout(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkoutURL != "https://square.link/abc" {
		t.Fatalf("unexpected checkout url %q", checkoutURL)
	}
	if pending.ID == "" || pending.Status != models.PendingStatusPending {
		t.Fatalf("unexpected pending row: id=%q status=%q", pending.ID, pending.Status)
	}
	if checkout.gotAmount != 100 {
		t.Fatalf("expected listing fee 100, got %d", checkout.gotAmount)
	}
	if checkout.gotRef != pending.ID {
		t.Fatalf("expected reference id %q, got %q", pending.ID, checkout.gotRef)
	}
	if want := "http://localhost:4000/payments/complete?pendingId=" + pending.ID; checkout.gotRedirect != want {
		t.Fatalf("unexpected redirect url %q, want %q", checkout.gotRedirect, want)
	}
	if _, err := repo.GetPendingListing(pending.ID); err != nil {
		t.Fatalf("expected pending row to be stored: %v", err)
	}
}

func TestCreatePendingCheckout_InvalidInput(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCheckout{url: "https://square.link/abc"}, testConfig())

	in := testInput()
	in.Title = ""
	if _, _, err := svc.CreatePendingCheckout(context.Background(), in); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission for missing title, got %v", err)
	}

	in = testInput()
	in.Category = "spaceships"
	if _, _, err := svc.CreatePendingCheckout(context.Background(), in); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission for unknown category, got %v", err)
	}

	if len(repo.pendings) != 0 {
		t.Fatalf("expected no pending rows after rejected input, got %d", len(repo.pendings))
	}
}

func TestCreatePendingCheckout_CheckoutFailure(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCheckout{err: errors.New("square down")}, testConfig())

	_, _, err := svc.CreatePendingCheckout(context.Background(), testInput())
	if err == nil || !strings.Contains(err.Error(), "create checkout session") {
		t.Fatalf("expected checkout session error, got %v", err)
	}
	if errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("checkout failure must not read as a validation error: %v", err)
	}
	// The staged row survives the failed session so support can recover it.
	if len(repo.pendings) != 1 {
		t.Fatalf("expected staged row to remain, got %d", len(repo.pendings))
	}
}

func TestRecordWebhookEvent_Deduplicates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCheckout{}, testConfig())

	raw := []byte(`{"event_id":"evt_1","data":{"object":{"order":{"reference_id":"p1"}}}}`)

	created, first, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Source: SourceSquare, ProviderEventID: "evt_1", RawPayload: raw,
	})
	if err != nil || !created {
		t.Fatalf("expected first delivery to create a row, created=%v err=%v", created, err)
	}

	created, second, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Source: SourceSquare, ProviderEventID: "evt_1", RawPayload: raw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected identical bytes to hit the existing row")
	}
	if first.ID != second.ID {
		t.Fatalf("expected same ledger row, got ids %d and %d", first.ID, second.ID)
	}

	// A single changed byte is a different delivery.
	created, _, err = svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Source: SourceSquare, RawPayload: append(raw, ' '),
	})
	if err != nil || !created {
		t.Fatalf("expected different bytes to create a new row, created=%v err=%v", created, err)
	}
}

func TestRecordWebhookEvent_RequiresSource(t *testing.T) {
	svc := NewService(newFakeRepository(), &fakeCheckout{}, testConfig())
	if _, _, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{RawPayload: []byte("{}")}); err == nil {
		t.Fatalf("expected missing source to error")
	}
}

func TestPublish(t *testing.T) {
	repo := newFakeRepository()
	checkout := &fakeCheckout{url: "https://square.link/abc"}
	svc := NewService(repo, checkout, testConfig())

	pending, _, err := svc.CreatePendingCheckout(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listing, err := svc.Publish(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}
	if listing.PendingListingID == nil || *listing.PendingListingID != pending.ID {
		t.Fatalf("expected listing to link back to pending %q", pending.ID)
	}
	if len(listing.Images) != 2 || listing.Images[0].Position != 0 || listing.Images[1].Position != 1 {
		t.Fatalf("expected 2 ordered images, got %+v", listing.Images)
	}

	stored, err := repo.GetPendingListing(pending.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsCompleted() {
		t.Fatalf("expected pending row to be completed, got %q", stored.Status)
	}

	// Second confirmation is a no-op.
	if _, err := svc.Publish(context.Background(), pending.ID); !errors.Is(err, ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
	if repo.listingCount() != 1 {
		t.Fatalf("expected exactly 1 listing, got %d", repo.listingCount())
	}
}

func TestPublish_UnknownID(t *testing.T) {
	svc := NewService(newFakeRepository(), &fakeCheckout{}, testConfig())

	if _, err := svc.Publish(context.Background(), "no-such-id"); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound, got %v", err)
	}
	if _, err := svc.Publish(context.Background(), "  "); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound for blank id, got %v", err)
	}
}

func TestPublish_MalformedImageList(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCheckout{}, testConfig())

	pending := &models.PendingListing{
		ID:         "p-broken",
		SellerID:   1,
		Title:      "Broken",
		Category:   models.CategoryOther,
		PricePence: 100,
		ImagesJSON: "not-a-json",
		Status:     models.PendingStatusPending,
	}
	if err := repo.CreatePendingListing(pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Publish(context.Background(), pending.ID); err == nil {
		t.Fatalf("expected publish to fail on malformed image list")
	}

	// Nothing was written: the record stays pending for a corrected retry.
	stored, _ := repo.GetPendingListing(pending.ID)
	if stored.IsCompleted() {
		t.Fatalf("expected pending row to stay pending")
	}
	if repo.listingCount() != 0 {
		t.Fatalf("expected no listing, got %d", repo.listingCount())
	}
}

func TestPublish_ConcurrentConfirmations(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCheckout{url: "https://square.link/abc"}, testConfig())

	pending, _, err := svc.CreatePendingCheckout(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const callers = 16
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Publish(context.Background(), pending.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyPublished):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != callers-1 {
		t.Fatalf("expected exactly one winner, got wins=%d losses=%d", wins, losses)
	}
	if repo.listingCount() != 1 {
		t.Fatalf("expected exactly 1 listing, got %d", repo.listingCount())
	}
}
