package presenter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"tipjar/internal/apperr"
	"tipjar/internal/explorer"
	"tipjar/internal/model"
)

// Fetcher loads the tip history. *history.Reader and *APIClient satisfy it.
type Fetcher interface {
	FetchHistory(ctx context.Context) ([]model.TipRecord, error)
}

// Phase is what the history view currently shows.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseEmpty
	PhaseList
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmpty:
		return "empty"
	case PhaseList:
		return "list"
	default:
		return "unknown"
	}
}

// View is a snapshot of the presenter.
type View struct {
	Phase   Phase
	Records []model.TipRecord
	Err     error
}

type Option func(*Presenter)

// WithLocation sets the zone used to render timestamps.
func WithLocation(loc *time.Location) Option {
	return func(p *Presenter) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Presenter keeps the history view in sync with the latest refresh.
// When refreshes overlap, only the last one issued updates the view.
type Presenter struct {
	fetcher  Fetcher
	explorer explorer.Explorer
	loc      *time.Location
	logger   *zap.Logger

	mu   sync.Mutex
	seq  uint64
	view View
}

func New(fetcher Fetcher, exp explorer.Explorer, opts ...Option) *Presenter {
	p := &Presenter{
		fetcher:  fetcher,
		explorer: exp,
		loc:      time.Local,
		logger:   zap.NewNop(),
		view:     View{Phase: PhaseLoading},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh reloads the history. It returns the fetch error, or nil when the
// result was applied or superseded by a newer refresh.
func (p *Presenter) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.view = View{Phase: PhaseLoading}
	p.mu.Unlock()

	records, err := p.fetcher.FetchHistory(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		p.logger.Debug("drop superseded history refresh", zap.Uint64("seq", seq), zap.Uint64("latest", p.seq))
		return nil
	}

	switch {
	case err != nil:
		p.view = View{Phase: PhaseError, Err: err}
		return err
	case len(records) == 0:
		p.view = View{Phase: PhaseEmpty, Records: []model.TipRecord{}}
	default:
		p.view = View{Phase: PhaseList, Records: records}
	}
	return nil
}

// View returns the current view.
func (p *Presenter) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	view := p.view
	if view.Records != nil {
		view.Records = append([]model.TipRecord(nil), view.Records...)
	}
	return view
}

// Render writes the current view as a table.
func (p *Presenter) Render(w io.Writer) error {
	view := p.View()
	switch view.Phase {
	case PhaseLoading:
		_, err := fmt.Fprintln(w, "Loading payment history...")
		return err
	case PhaseError:
		message := view.Err.Error()
		if appErr, ok := apperr.As(view.Err); ok {
			message = appErr.Message
		}
		_, err := fmt.Fprintf(w, "Error: %s\n", message)
		return err
	case PhaseEmpty:
		_, err := fmt.Fprintln(w, "No tips yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTIPPER\tSTAFF\tAMOUNT\tMESSAGE\tTRANSACTION")
	for _, record := range view.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(record.Timestamp).In(p.loc).Format("2006-01-02 15:04:05"),
			TruncateAddress(record.Tipper),
			orDefault(record.StaffName, "N/A"),
			record.Amount,
			orDefault(record.Message, "-"),
			p.explorer.TxURL(record.TransactionHash),
		)
	}
	return tw.Flush()
}

// TruncateAddress shortens an address to 0x1234...abcd.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
