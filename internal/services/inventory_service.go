package services

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/pkg/logger"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the maximum number of products a store holds unless
// configured otherwise.
const DefaultCapacity = 1000

// ChangePublisher receives every recorded mutation after it has been written
// to the change log.
type ChangePublisher interface {
	PublishChange(entry models.ChangeLogEntry) error
}

// InventoryService owns the in-memory inventory. Every mutation validates,
// changes the in-memory collection, rewrites the persisted collection and
// appends one change-log entry before returning.
type InventoryService struct {
	mu        sync.Mutex
	repo      repositories.ProductRepository
	changes   *ChangeLog
	publisher ChangePublisher
	capacity  int
	now       func() time.Time
	log       zerolog.Logger
	products  []models.Product
}

// Option configures an InventoryService.
type Option func(*InventoryService)

// WithCapacity sets the maximum number of products. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(s *InventoryService) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock replaces time.Now for creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *InventoryService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPublisher forwards recorded changes to p.
func WithPublisher(p ChangePublisher) Option {
	return func(s *InventoryService) {
		s.publisher = p
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(s *InventoryService) {
		s.log = l
	}
}

// NewInventoryService creates an empty store. Call Load to read prior state.
func NewInventoryService(repo repositories.ProductRepository, changes *ChangeLog, opts ...Option) *InventoryService {
	s := &InventoryService{
		repo:     repo,
		changes:  changes,
		capacity: DefaultCapacity,
		now:      time.Now,
		log:      logger.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the persisted collection, reading at
// most Capacity products. An unreadable source leaves the store empty; a read
// that fails part way keeps the products decoded before the failure.
func (s *InventoryService) Load() (loaded, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.repo.Load(s.capacity)
	if err != nil {
		if len(res.Products) == 0 {
			s.log.Warn().Err(err).Msg("Starting with an empty inventory")
		} else {
			s.log.Warn().Err(err).Int("loaded", len(res.Products)).Msg("Inventory only partially read")
		}
	}

	products := make([]models.Product, 0, len(res.Products))
	seen := make(map[string]struct{}, len(res.Products))
	for _, p := range res.Products {
		if len(products) >= s.capacity {
			break
		}
		if _, dup := seen[p.ID]; dup {
			res.Skipped++
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	if res.Skipped > 0 {
		s.log.Warn().Int("skipped", res.Skipped).Msg("Dropped malformed inventory records")
	}
	s.products = products
	return len(s.products), res.Skipped
}

// Capacity returns the maximum number of products.
func (s *InventoryService) Capacity() int {
	return s.capacity
}

// Len returns the number of products held.
func (s *InventoryService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// List returns a copy of all products in store order.
func (s *InventoryService) List() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// FindByID returns the position of the first product whose ID equals id.
func (s *InventoryService) FindByID(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return i, nil
}

// Get returns a copy of the product with the given ID.
func (s *InventoryService) Get(id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.products[i], nil
}

// NextID returns the next conventional ID for the current state.
func (s *InventoryService) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.GenerateUniqueID(s.products)
}

// NewProduct returns a blank product dated with the store clock.
func (s *InventoryService) NewProduct() models.Product {
	return models.NewProduct(s.now())
}

// Add appends p. It fails with ErrCapacityExceeded when the store is full,
// ErrDuplicateID when the ID is taken and ErrInvalidProduct when a field
// breaks its rule. An empty date is set to today. A non-nil error wrapping
// ErrPersistence comes with the stored product: the product stays in memory.
func (s *InventoryService) Add(p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(p)
}

// AddNew assigns the next generated ID to p and adds it.
func (s *InventoryService) AddNew(p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = models.GenerateUniqueID(s.products)
	return s.add(p)
}

func (s *InventoryService) add(p models.Product) (models.Product, error) {
	if len(s.products) >= s.capacity {
		return models.Product{}, fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, s.capacity)
	}
	if s.indexOf(p.ID) >= 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	if p.Date == "" {
		p.Date = s.now().Format(models.DateLayout)
	}
	if err := models.ValidateProduct(p); err != nil {
		return models.Product{}, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}

	s.products = append(s.products, p)
	return p, s.persist(models.ChangeAdded, nil, &p)
}

// Modify applies the proposed fields of upd to the product with the given ID.
// A proposed field that breaks its rule (empty or too long text, negative
// number) is ignored and the previous value kept; the other fields still apply.
// The creation date and the ID never change.
func (s *InventoryService) Modify(id string, upd models.ProductUpdate) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	before := s.products[i]
	after := applyUpdate(before, upd)
	s.products[i] = after
	return after, s.persist(models.ChangeModified, &before, &after)
}

func applyUpdate(p models.Product, upd models.ProductUpdate) models.Product {
	if upd.Name != nil && models.ValidateField(*upd.Name, models.NameRule) == nil {
		p.Name = *upd.Name
	}
	if upd.Category != nil && models.ValidateField(*upd.Category, models.CategoryRule) == nil {
		p.Category = *upd.Category
	}
	if upd.Quantity != nil && *upd.Quantity >= 0 {
		p.Quantity = *upd.Quantity
	}
	if upd.Price != nil && models.ValidPrice(*upd.Price) {
		p.Price = *upd.Price
	}
	if upd.MinStock != nil && *upd.MinStock >= 0 {
		p.MinStock = *upd.MinStock
	}
	return p
}

// PreviewDelete returns the product that CommitDelete would remove, without
// changing anything.
func (s *InventoryService) PreviewDelete(id string) (models.Product, error) {
	return s.Get(id)
}

// CommitDelete removes the product with the given ID, keeping the order of
// the remaining products, and returns the removed snapshot.
func (s *InventoryService) CommitDelete(id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return removed, s.persist(models.ChangeDeleted, &removed, nil)
}

// Reset drops every product and empties both the collection and the change
// log. It cannot be undone.
func (s *InventoryService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil

	var errs []error
	if err := s.repo.Truncate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.changes.Reset(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
		s.log.Error().Err(err).Msg("Inventory reset was not fully persisted")
		return err
	}
	s.log.Info().Msg("Inventory and history reset")
	return nil
}

// RecentChanges returns the last n change-log lines, oldest first.
func (s *InventoryService) RecentChanges(n int) ([]string, error) {
	return s.changes.Recent(n)
}

// LowStock returns the products at or below their alert threshold.
func (s *InventoryService) LowStock() []models.Product {
	return LowStockView(s.List())
}

// Statistics summarizes the current inventory.
func (s *InventoryService) Statistics() Statistics {
	return ComputeStatistics(s.List())
}

// Search returns the products matching keyword by name or ID.
func (s *InventoryService) Search(keyword string) []models.Product {
	return Search(s.List(), keyword)
}

func (s *InventoryService) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection, then records and publishes the change.
// The in-memory mutation has already happened and is not undone on failure.
func (s *InventoryService) persist(kind models.ChangeKind, before, after *models.Product) error {
	var errs []error
	if err := s.repo.Save(s.products); err != nil {
		errs = append(errs, err)
	}

	entry, err := s.changes.Record(kind, before, after)
	if err != nil {
		errs = append(errs, err)
	} else {
		s.publish(entry)
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
		s.log.Error().Err(err).Str("action", kind.String()).Msg("Inventory change was not fully persisted")
		return err
	}
	s.log.Debug().Str("action", kind.String()).Str("id", entry.ID).Msg("Inventory change persisted")
	return nil
}

func (s *InventoryService) publish(entry models.ChangeLogEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(entry); err != nil {
		s.log.Warn().Err(err).Str("id", entry.ID).Msg("Failed to publish inventory change")
	}
}
