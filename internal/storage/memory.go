package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

// MemoryStore keeps everything in process memory. Transactions work on a
// copy of the state that replaces the live state only when fn succeeds.
type MemoryStore struct {
	mu   *sync.Mutex
	st   *memState
	inTx bool
	log  *zap.Logger
}

type memState struct {
	drafts   map[string][]byte
	products map[uint]models.Product
	users    map[uuid.UUID]models.User
}

func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	st := &memState{
		drafts:   map[string][]byte{},
		products: map[uint]models.Product{},
		users:    map[uuid.UUID]models.User{},
	}
	return &MemoryStore{mu: &sync.Mutex{}, st: st, log: log}
}

func (s *MemoryStore) Drafts() Drafts {
	return &draftRepo{be: memDrafts{s}, log: s.log}
}

func (s *MemoryStore) Products() Products {
	return memProducts{s}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Repos) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := &MemoryStore{mu: s.mu, st: work, inTx: true, log: s.log}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

// PutRawDraft stores value under key without any decoding. Used to seed
// drafts written by older clients (legacy keys, malformed JSON).
func (s *MemoryStore) PutRawDraft(seller uuid.UUID, key string, value []byte) {
	unlock := s.lock()
	defer unlock()
	s.st.drafts[draftKey(seller, key)] = append([]byte(nil), value...)
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (m *memState) clone() *memState {
	out := &memState{
		drafts:   make(map[string][]byte, len(m.drafts)),
		products: make(map[uint]models.Product, len(m.products)),
		users:    make(map[uuid.UUID]models.User, len(m.users)),
	}
	for k, v := range m.drafts {
		out.drafts[k] = append([]byte(nil), v...)
	}
	for k, p := range m.products {
		out.products[k] = copyProduct(p)
	}
	for k, u := range m.users {
		out.users[k] = u
	}
	return out
}

func copyProduct(p models.Product) models.Product {
	p.Variants = append([]models.ProductVariant(nil), p.Variants...)
	p.Full = append(datatypes.JSON(nil), p.Full...)
	return p
}

func draftKey(seller uuid.UUID, key string) string {
	return seller.String() + "/" + key
}

// ========= drafts =========

type memDrafts struct {
	s *MemoryStore
}

func (m memDrafts) get(ctx context.Context, seller uuid.UUID, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	unlock := m.s.lock()
	defer unlock()
	v, ok := m.s.st.drafts[draftKey(seller, key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m memDrafts) put(ctx context.Context, seller uuid.UUID, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.s.lock()
	defer unlock()
	m.s.st.drafts[draftKey(seller, key)] = append([]byte(nil), value...)
	return nil
}

func (m memDrafts) del(ctx context.Context, seller uuid.UUID, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.s.lock()
	defer unlock()
	for _, k := range keys {
		delete(m.s.st.drafts, draftKey(seller, k))
	}
	return nil
}

// ========= products =========

type memProducts struct {
	s *MemoryStore
}

func (m memProducts) NextID(ctx context.Context) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	unlock := m.s.lock()
	defer unlock()
	var last uint
	for id := range m.s.st.products {
		if id > last {
			last = id
		}
	}
	return last + 1, nil
}

func (m memProducts) Create(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.s.lock()
	defer unlock()
	if _, exists := m.s.st.products[p.ID]; exists || p.ID == 0 {
		return ErrConflict
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.ProductStatusPublished
	}
	for i := range p.Variants {
		p.Variants[i].ProductID = p.ID
	}
	m.s.st.products[p.ID] = copyProduct(*p)
	return nil
}

func (m memProducts) Get(ctx context.Context, id uint) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := m.s.lock()
	defer unlock()
	p, ok := m.s.st.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyProduct(p)
	return &out, nil
}

func (m memProducts) ListBySeller(ctx context.Context, seller uuid.UUID) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := m.s.lock()
	defer unlock()
	var out []models.Product
	for _, p := range m.s.st.products {
		if p.SellerID == seller {
			out = append(out, copyProduct(p))
		}
	}
	sortLatest(out)
	return out, nil
}

func (m memProducts) ListPublished(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f = f.normalized()
	unlock := m.s.lock()
	defer unlock()

	q := strings.ToLower(f.Query)
	var matched []models.Product
	for _, p := range m.s.st.products {
		if p.Status != models.ProductStatusPublished {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price.LessThan(decimal.NewFromInt(f.MinPrice)) {
			continue
		}
		if f.MaxPrice > 0 && p.Price.GreaterThan(decimal.NewFromInt(f.MaxPrice)) {
			continue
		}
		matched = append(matched, copyProduct(p))
	}

	switch f.Sort {
	case SortPriceLow:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.LessThan(matched[j].Price) })
	case SortPriceHigh:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.GreaterThan(matched[j].Price) })
	default:
		sortLatest(matched)
	}

	total := int64(len(matched))
	start := f.offset()
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m memProducts) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := m.s.lock()
	defer unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range m.s.st.products {
		if p.Status != models.ProductStatusPublished || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func sortLatest(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}
