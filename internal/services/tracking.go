package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"aitools/internal/models"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// EventKind tells the tracking worker what to record.
type EventKind int

const (
	EventVisit EventKind = iota
	EventClick
)

func (k EventKind) String() string {
	switch k {
	case EventVisit:
		return "visit"
	case EventClick:
		return "click"
	default:
		return "unknown"
	}
}

// Event is one queued tracking write.
type Event struct {
	Kind   EventKind
	Visit  models.PageVisit
	ToolID string
	UserID string
}

// Tracker records page visits and tool clicks off the request path.
// Page handlers Enqueue; a single worker drains the queue.
type Tracker struct {
	db      *gorm.DB
	queue   chan Event
	seen    *cache.Cache
	now     func() time.Time
	dropped atomic.Int64

	// OnResult, when set, is called after each processed event. stored is
	// false for a deduplicated visit or a failed write.
	OnResult func(kind EventKind, stored bool, err error)
}

func NewTracker(db *gorm.DB, queueSize int) *Tracker {
	return &Tracker{
		db:    db,
		queue: make(chan Event, queueSize),
		seen:  cache.New(24*time.Hour, 10*time.Minute),
		now:   time.Now,
	}
}

// Start runs the worker until ctx is cancelled.
func (t *Tracker) Start(ctx context.Context) {
	go t.worker(ctx)
}

// Enqueue hands an event to the worker without blocking. A full queue drops
// the event; tracking is best-effort.
func (t *Tracker) Enqueue(ev Event) bool {
	select {
	case t.queue <- ev:
		return true
	default:
		n := t.dropped.Add(1)
		if n == 1 || n%100 == 0 {
			log.Printf("[tracking] queue full, %d events dropped so far", n)
		}
		return false
	}
}

// Dropped reports how many events Enqueue has discarded.
func (t *Tracker) Dropped() int64 {
	return t.dropped.Load()
}

func (t *Tracker) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-t.queue:
			t.handle(ctx, ev)
		}
	}
}

func (t *Tracker) handle(ctx context.Context, ev Event) {
	var (
		stored bool
		err    error
	)
	switch ev.Kind {
	case EventVisit:
		stored, err = t.TrackVisit(ctx, ev.Visit)
	case EventClick:
		err = t.TrackClick(ctx, ev.ToolID, ev.UserID)
		stored = err == nil
	}
	if err != nil {
		log.Printf("[tracking] failed to record %s: %v", ev.Kind, err)
	}
	if t.OnResult != nil {
		t.OnResult(ev.Kind, stored, err)
	}
}

func startOfDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// TrackVisit stores a page visit unless the same IP already visited the same
// path today. The check and the insert are not atomic, so two concurrent
// first visits may both be stored. Visits without an IP are never deduped.
func (t *Tracker) TrackVisit(ctx context.Context, visit models.PageVisit) (bool, error) {
	now := t.now()
	dayStart := startOfDay(now)
	key := visit.PagePath + "|" + visit.VisitorIP + "|" + dayStart.Format("2006-01-02")

	if visit.VisitorIP != "" {
		if _, ok := t.seen.Get(key); ok {
			return false, nil
		}

		var existing []models.PageVisit
		err := t.db.WithContext(ctx).
			Select("id").
			Where("page_path = ? AND visitor_ip = ? AND visited_at >= ?", visit.PagePath, visit.VisitorIP, dayStart).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			t.remember(key, dayStart)
			return false, nil
		}
	}

	visit.ID = ""
	visit.VisitedAt = now
	if err := t.db.WithContext(ctx).Create(&visit).Error; err != nil {
		return false, err
	}
	if visit.VisitorIP != "" {
		t.remember(key, dayStart)
	}
	return true, nil
}

func (t *Tracker) remember(key string, dayStart time.Time) {
	ttl := dayStart.AddDate(0, 0, 1).Sub(t.now())
	if ttl <= 0 {
		return
	}
	t.seen.Set(key, struct{}{}, ttl)
}

// TrackClick records that a tool's detail page was opened.
func (t *Tracker) TrackClick(ctx context.Context, toolID, userID string) error {
	click := models.ToolClick{ToolID: toolID, ClickedAt: t.now()}
	if userID != "" {
		click.UserID = &userID
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tool{}).Where("id = ?", toolID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&click).Error
	})
}
