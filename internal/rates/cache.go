package rates

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
)

// Cache is the explicit two-level rate cache handed to the resolver: an
// in-process LRU in front of the durable sample table. It is owned by main
// (per-process lifecycle), not hidden in package state.
type Cache struct {
	mem  *lru.Cache[string, decimal.Decimal]
	repo *repository.RateRepo
}

func NewCache(size int, repo *repository.RateRepo) (*Cache, error) {
	mem, err := lru.New[string, decimal.Decimal](size)
	if err != nil {
		return nil, err
	}
	return &Cache{mem: mem, repo: repo}, nil
}

func cacheKey(pair string, date time.Time) string {
	return pair + "@" + date.Format(domain.DateKey)
}

// Get checks the LRU, then the sample table. A durable hit is promoted
// into the LRU.
func (c *Cache) Get(pair string, date time.Time) (decimal.Decimal, bool) {
	key := cacheKey(pair, date)
	if rate, ok := c.mem.Get(key); ok {
		return rate, true
	}

	sample, err := c.repo.Get(pair, date)
	if err != nil {
		return decimal.Decimal{}, false
	}
	c.mem.Add(key, sample.Rate)
	return sample.Rate, true
}

// Put records a resolved rate in both levels. A durable write failure is
// swallowed: the cache is an optimization, not a source of truth.
func (c *Cache) Put(pair string, date time.Time, rate decimal.Decimal, source string) {
	c.mem.Add(cacheKey(pair, date), rate)
	_ = c.repo.Put(&domain.ExchangeRateSample{
		Pair:      pair,
		Date:      date,
		Rate:      rate,
		Source:    source,
		FetchedAt: time.Now().UTC(),
	})
}
