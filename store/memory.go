package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"app/models"

	"github.com/google/uuid"
)

// In-memory stores. They back the demo mode (run without DATABASE_URL) and
// the test suite, and implement the same contracts as the Postgres stores,
// including the single-winner finalize transition.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email || (googleID != "" && u.GoogleID == googleID) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if token != "" && u.ResetToken == token && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[string]models.Product)}
}

func (s *MemoryProductStore) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) ListByUser(ctx context.Context, userID string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]models.Product, 0)
	for _, p := range s.products {
		if p.UserID == userID {
			products = append(products, p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *MemoryProductStore) GetByID(ctx context.Context, userID, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok || existing.UserID != p.UserID {
		return ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryProductStore) RecordSale(ctx context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok || p.UserID != userID {
		return nil
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.TotalSold += qty
	s.products[productID] = p
	return nil
}

func (s *MemoryProductStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.products {
		if p.UserID == userID {
			delete(s.products, id)
		}
	}
	return nil
}

type MemoryBillStore struct {
	mu    sync.RWMutex
	bills map[string]models.Bill
}

func NewMemoryBillStore() *MemoryBillStore {
	return &MemoryBillStore{bills: make(map[string]models.Bill)}
}

func (s *MemoryBillStore) Create(ctx context.Context, b *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.bills[b.ID] = *b
	return nil
}

func (s *MemoryBillStore) byUser(userID string) []models.Bill {
	bills := make([]models.Bill, 0)
	for _, b := range s.bills {
		if b.UserID == userID {
			bills = append(bills, b)
		}
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
	return bills
}

func (s *MemoryBillStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := s.byUser(userID)
	if offset >= len(bills) {
		return []models.Bill{}, nil
	}
	bills = bills[offset:]
	if limit > 0 && limit < len(bills) {
		bills = bills[:limit]
	}
	return bills, nil
}

func (s *MemoryBillStore) CountByUser(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser(userID)), nil
}

func (s *MemoryBillStore) GetByID(ctx context.Context, userID, id string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryBillStore) Update(ctx context.Context, b *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bills[b.ID]
	if !ok || existing.UserID != b.UserID {
		return ErrNotFound
	}
	s.bills[b.ID] = *b
	return nil
}

func (s *MemoryBillStore) FindPaidInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := make([]models.Bill, 0)
	for _, b := range s.bills {
		if b.UserID != userID || b.PaymentStatus != models.PaymentPaid {
			continue
		}
		created := b.CreatedAt.UTC()
		if created.Before(start) || !created.Before(end) {
			continue
		}
		bills = append(bills, b)
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].CreatedAt.Before(bills[j].CreatedAt)
	})
	return bills, nil
}

func (s *MemoryBillStore) FindSince(ctx context.Context, userID string, since time.Time) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := make([]models.Bill, 0)
	for _, b := range s.bills {
		if b.UserID == userID && !b.CreatedAt.Before(since) {
			bills = append(bills, b)
		}
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
	return bills, nil
}

func (s *MemoryBillStore) LastBillNumber(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := s.byUser(userID)
	if len(bills) == 0 {
		return "", nil
	}
	return bills[0].BillNumber, nil
}

func (s *MemoryBillStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.bills {
		if b.UserID == userID {
			delete(s.bills, id)
		}
	}
	return nil
}

type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]models.Report
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[string]models.Report)}
}

func (s *MemoryReportStore) Create(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reports[r.ID] = *r
	return nil
}

func (s *MemoryReportStore) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]models.Report, 0)
	for _, r := range s.reports {
		if r.UserID == userID {
			reports = append(reports, r)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (s *MemoryReportStore) GetByID(ctx context.Context, userID, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryReportStore) Finalize(ctx context.Context, userID, id string, at time.Time) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	// Checked and flipped under the same lock; only one caller can win.
	if r.Finalized {
		return nil, ErrAlreadyFinalized
	}
	r.Finalized = true
	r.FinalizedAt = &at
	s.reports[id] = r
	return &r, nil
}
