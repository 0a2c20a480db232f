package poller

import (
	"fmt"
	"sync"
	"time"

	"github.com/contoso-notify/internal/domain"
)

const (
	// MaxVisible is how many tiles the board shows at once.
	MaxVisible = 5
	// TileLifetime is how long a tile stays before it expires.
	TileLifetime = 60 * time.Second
)

// Severity drives how a tile is styled.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityFor maps an operation to its tile severity.
func SeverityFor(op domain.Operation) Severity {
	switch op {
	case domain.OperationCreate:
		return SeveritySuccess
	case domain.OperationDelete:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Tile is one rendered notification.
type Tile struct {
	ID           int64
	Notification domain.Notification
	Severity     Severity
	Title        string
	ExpiresAt    time.Time
}

// Footer renders the "By actor • when" line relative to now.
func (t Tile) Footer(now time.Time) string {
	return fmt.Sprintf("By %s • %s", t.Notification.CreatedBy, TimeAgo(t.Notification.CreatedAt, now))
}

// Board holds the visible tiles, oldest first.
type Board struct {
	mu     sync.Mutex
	tiles  []Tile
	nextID int64
}

func NewBoard() *Board {
	return &Board{}
}

// Add renders n as a tile and dismisses the oldest tiles beyond MaxVisible.
func (b *Board) Add(n domain.Notification, now time.Time) Tile {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	t := Tile{
		ID:           b.nextID,
		Notification: n,
		Severity:     SeverityFor(n.Operation),
		Title:        fmt.Sprintf("%s - %s", n.Operation, n.EntityType),
		ExpiresAt:    now.Add(TileLifetime),
	}
	b.tiles = append(b.tiles, t)
	if over := len(b.tiles) - MaxVisible; over > 0 {
		b.tiles = append(b.tiles[:0], b.tiles[over:]...)
	}
	return t
}

// Expire dismisses every tile whose lifetime has passed and reports how many.
func (b *Board) Expire(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.tiles[:0]
	for _, t := range b.tiles {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	removed := len(b.tiles) - len(kept)
	b.tiles = kept
	return removed
}

// Dismiss removes the tile with the given id. It reports whether one was found.
func (b *Board) Dismiss(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tiles {
		if t.ID == id {
			b.tiles = append(b.tiles[:i], b.tiles[i+1:]...)
			return true
		}
	}
	return false
}

// Visible returns a copy of the tiles, oldest first.
func (b *Board) Visible() []Tile {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Tile, len(b.tiles))
	copy(out, b.tiles)
	return out
}

// TimeAgo renders the distance between t and now in whole units.
func TimeAgo(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	default:
		return plural(secs/86400, "day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
