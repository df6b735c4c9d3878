package journal_port

import (
	"context"

	"rebang/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=journal_port.go -destination=../../mocks/mock_journal_port.go -package=mocks

// JournalSourcePort talks to the blogs behind the journal feed.
type JournalSourcePort interface {
	// Probe reports whether url answered a GET with a 2xx status.
	Probe(ctx context.Context, url string) bool
	// FetchEntries returns up to limit posts of one source.
	FetchEntries(ctx context.Context, source domain.JournalSource, limit int) ([]domain.JournalEntry, error)
}
