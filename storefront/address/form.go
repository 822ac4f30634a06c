// Package address implements the add/edit address form with place search,
// device location and map pin resolution.
package address

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"medcart/models"
	"medcart/storefront/debounce"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	SearchDelay       = 300 * time.Millisecond
	MinQueryLength    = 3
	LocationTimeout   = 20 * time.Second
	GoodAccuracy      = 20.0
	ImprovingReadings = 3
)

var ErrNoLocation = errors.New("unable to determine your location")

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

type API interface {
	Autocomplete(ctx context.Context, query string) ([]models.MapsPrediction, error)
	PlaceDetails(ctx context.Context, placeID string) (*models.GeocodedAddress, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.GeocodedAddress, error)
	CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error)
}

// Reading is one position fix. Accuracy is in metres.
type Reading struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// LocationSource streams position fixes until ctx is cancelled.
type LocationSource interface {
	Watch(ctx context.Context) (<-chan Reading, error)
}

type Form struct {
	api    API
	clock  clock.Clock
	log    *zap.Logger
	search *debounce.Debouncer

	onPredictions func([]models.MapsPrediction)
	onSaved       func(models.Address)

	mu           sync.Mutex
	editID       string
	values       models.AddressRequest
	predictions  []models.MapsPrediction
	searchSeq    uint64
	cancelSearch context.CancelFunc
}

type Option func(*Form)

func WithClock(clk clock.Clock) Option {
	return func(f *Form) { f.clock = clk }
}

func WithLogger(log *zap.Logger) Option {
	return func(f *Form) { f.log = log }
}

// WithPredictions registers the callback that receives every search result,
// including the empty list when predictions are cleared.
func WithPredictions(fn func([]models.MapsPrediction)) Option {
	return func(f *Form) { f.onPredictions = fn }
}

func OnSaved(fn func(models.Address)) Option {
	return func(f *Form) { f.onSaved = fn }
}

// New returns an empty form that creates a new address on Submit.
func New(api API, opts ...Option) *Form {
	f := &Form{api: api, clock: clock.New(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	f.search = debounce.New(f.clock, SearchDelay)
	return f
}

// NewEdit returns a form prefilled from addr that updates it on Submit.
func NewEdit(api API, addr models.Address, opts ...Option) *Form {
	f := New(api, opts...)
	f.editID = addr.ID
	f.values = models.AddressRequest{
		FullName:     addr.FullName,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		City:         addr.City,
		State:        addr.State,
		PostalCode:   addr.PostalCode,
		PhoneNumber:  addr.PhoneNumber,
		AddressType:  addr.AddressType,
		Latitude:     addr.Latitude,
		Longitude:    addr.Longitude,
	}
	return f
}

func (f *Form) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editID != ""
}

func (f *Form) Values() models.AddressRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Update applies fn to the form values.
func (f *Form) Update(fn func(*models.AddressRequest)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.values)
}

func (f *Form) Predictions() []models.MapsPrediction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MapsPrediction(nil), f.predictions...)
}

// Search schedules an autocomplete lookup for query. Each call supersedes
// the previous one and cancels its request if it is still in flight.
func (f *Form) Search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	f.mu.Lock()
	f.searchSeq++
	seq := f.searchSeq
	if f.cancelSearch != nil {
		f.cancelSearch()
		f.cancelSearch = nil
	}
	f.mu.Unlock()

	if len([]rune(query)) < MinQueryLength {
		f.search.Cancel()
		f.publish(seq, nil)
		return
	}

	f.search.Trigger(func(context.Context) {
		f.runSearch(ctx, seq, query)
	})
}

// Close drops any scheduled search and cancels the one in flight.
func (f *Form) Close() {
	f.search.Cancel()
	f.mu.Lock()
	f.searchSeq++
	if f.cancelSearch != nil {
		f.cancelSearch()
		f.cancelSearch = nil
	}
	f.mu.Unlock()
}

func (f *Form) runSearch(ctx context.Context, seq uint64, query string) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	if seq != f.searchSeq {
		f.mu.Unlock()
		return
	}
	f.cancelSearch = cancel
	f.mu.Unlock()

	predictions, err := f.api.Autocomplete(sctx, query)
	if err != nil {
		if sctx.Err() == nil {
			f.log.Warn("place search failed", zap.String("query", query), zap.Error(err))
			f.publish(seq, nil)
		}
		return
	}
	f.publish(seq, predictions)
}

func (f *Form) publish(seq uint64, predictions []models.MapsPrediction) {
	f.mu.Lock()
	if seq != f.searchSeq {
		f.mu.Unlock()
		return
	}
	f.predictions = append([]models.MapsPrediction(nil), predictions...)
	out := append([]models.MapsPrediction(nil), predictions...)
	f.mu.Unlock()

	if f.onPredictions != nil {
		f.onPredictions(out)
	}
}

// SelectPrediction resolves placeID and fills the address fields from it.
func (f *Form) SelectPrediction(ctx context.Context, placeID string) error {
	details, err := f.api.PlaceDetails(ctx, placeID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.fill(*details, details.Latitude, details.Longitude)
	f.predictions = nil
	f.mu.Unlock()
	return nil
}

// UseDeviceLocation watches src until a fix is accurate enough, the fixes
// stop improving, or LocationTimeout passes, then reverse geocodes the best
// fix seen.
func (f *Form) UseDeviceLocation(ctx context.Context, src LocationSource) error {
	timer := f.clock.Timer(LocationTimeout)
	defer timer.Stop()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readings, err := src.Watch(wctx)
	if err != nil {
		return err
	}

	var (
		best    Reading
		found   bool
		improve int
	)
watch:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			break watch
		case r, ok := <-readings:
			if !ok {
				break watch
			}
			switch {
			case !found:
				best, found = r, true
			case r.Accuracy < best.Accuracy:
				best = r
				improve++
			default:
				improve = 0
			}
			if best.Accuracy <= GoodAccuracy || improve >= ImprovingReadings {
				break watch
			}
		}
	}
	cancel()

	if !found {
		return ErrNoLocation
	}
	f.log.Debug("device location resolved",
		zap.Float64("accuracy", best.Accuracy),
		zap.Int("improving", improve),
	)
	return f.PinMap(ctx, best.Latitude, best.Longitude)
}

// PinMap sets the coordinates and fills the remaining fields by reverse
// geocoding them. The coordinates are kept when the lookup fails.
func (f *Form) PinMap(ctx context.Context, lat, lng float64) error {
	f.mu.Lock()
	f.values.Latitude = &lat
	f.values.Longitude = &lng
	f.mu.Unlock()

	resolved, err := f.api.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.fill(*resolved, lat, lng)
	f.mu.Unlock()
	return nil
}

// fill must be called with f.mu held.
func (f *Form) fill(g models.GeocodedAddress, lat, lng float64) {
	line1 := g.FormattedAddress
	if line1 == "" {
		line1 = g.AddressLine1
	}
	if line1 != "" {
		f.values.AddressLine1 = line1
	}
	if g.City != "" {
		f.values.City = g.City
	}
	if g.State != "" {
		f.values.State = g.State
	}
	if g.PostalCode != "" {
		f.values.PostalCode = g.PostalCode
	}
	f.values.Latitude = &lat
	f.values.Longitude = &lng
}

// Validate returns a *ValidationError listing every invalid field.
func (f *Form) Validate() error {
	errs := models.ValidateAddress(f.Values().ToAddress())
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Submit validates the form, then creates or updates the address.
func (f *Form) Submit(ctx context.Context) (*models.Address, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	id := f.editID
	req := f.values
	f.mu.Unlock()

	var (
		saved *models.Address
		err   error
	)
	if id != "" {
		saved, err = f.api.UpdateAddress(ctx, id, req)
	} else {
		saved, err = f.api.CreateAddress(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.editID = saved.ID
	f.mu.Unlock()

	if f.onSaved != nil {
		f.onSaved(*saved)
	}
	return saved, nil
}
