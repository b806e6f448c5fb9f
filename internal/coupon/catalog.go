package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/pricing"
)

var (
	ErrNotFound     = errors.New("coupon not found")
	ErrExpired      = errors.New("coupon expired")
	ErrBelowMinimum = errors.New("subtotal below coupon minimum")
	ErrAlreadyUsed  = errors.New("coupon already used")
	ErrInvalidRule  = errors.New("invalid coupon rule")
)

// BelowMinimumError reports the subtotal a coupon requires. It matches
// ErrBelowMinimum.
type BelowMinimumError struct {
	Minimum money.Amount
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("%v: minimum is %s", ErrBelowMinimum, money.Format(e.Minimum))
}

func (e *BelowMinimumError) Is(target error) bool {
	return target == ErrBelowMinimum
}

// Message returns the customer-facing text for a validation failure.
func Message(err error) string {
	var below *BelowMinimumError
	switch {
	case errors.As(err, &below):
		return fmt.Sprintf("This coupon requires a minimum order of %s", money.Format(below.Minimum))
	case errors.Is(err, ErrExpired):
		return "This coupon has expired"
	case errors.Is(err, ErrAlreadyUsed):
		return "You have already used this coupon"
	default:
		return "Invalid coupon code"
	}
}

// falsePositiveRate sizes the bloom prefilter.
const falsePositiveRate = 0.01

// Rule is a coupon definition held by the catalog.
type Rule struct {
	Code        string
	Type        models.CouponType
	Value       float64
	MinSubtotal money.Amount
	MaxDiscount money.Amount
	ExpiresAt   time.Time // zero never expires
	Description string
}

func (r Rule) pricing() pricing.Rule {
	return pricing.Rule{Type: r.Type, Value: r.Value, MaxDiscount: r.MaxDiscount}
}

// Catalog validates coupon codes against seeded rules and rule files.
// Each user may redeem a code once.
type Catalog struct {
	mu      sync.RWMutex
	rules   map[string]Rule
	filter  *bloom.BloomFilter
	sources []int // rules loaded per source, for stats
	used    map[string]map[int64]bool
	now     func() time.Time
	client  *http.Client
}

// sourceLoadResult holds the result of loading a single rule source
type sourceLoadResult struct {
	index int
	rules []Rule
	err   error
}

// NewCatalog creates a catalog holding the seed rules.
func NewCatalog(seed []Rule) *Catalog {
	c := &Catalog{
		rules: make(map[string]Rule, len(seed)),
		used:  make(map[string]map[int64]bool),
		now:   time.Now,
		// Large rule files over slow links need more time
		client: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, r := range seed {
		r.Code = normalize(r.Code)
		c.rules[r.Code] = r
	}
	c.rebuildFilter()
	return c
}

// DefaultRules is the sandbox seed.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "BIENVENUE", Type: models.CouponPercentage, Value: 10, MaxDiscount: 2000, Description: "10% off your first order"},
		{Code: "DSCHANG500", Type: models.CouponFixed, Value: 500, MinSubtotal: 3000, Description: "500 XAF off from 3 000 XAF"},
		{Code: "LIVRAISON", Type: models.CouponFreeDelivery, Description: "Free delivery"},
		{Code: "INSAM2023", Type: models.CouponPercentage, Value: 15, ExpiresAt: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), Description: "Back to school 2023"},
	}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LoadSources loads rule files concurrently and merges them into the catalog.
// A source is a local path or an http(s) URL, plain text or gzip.
// Every failing source is reported; the catalog is then unchanged.
func (c *Catalog) LoadSources(ctx context.Context, sources []string) error {
	if len(sources) == 0 {
		return fmt.Errorf("no coupon sources provided")
	}

	resultChan := make(chan sourceLoadResult, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			rules, err := c.loadSource(ctx, source)
			resultChan <- sourceLoadResult{index: index, rules: rules, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order so later sources override earlier ones
	results := make([]sourceLoadResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	var errs *multierror.Error
	for i, result := range results {
		if result.err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to load coupon source %d (%s): %w", i+1, sources[i], result.err))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, result := range results {
		for _, r := range result.rules {
			c.rules[r.Code] = r
		}
		c.sources = append(c.sources, len(result.rules))
	}
	c.rebuildFilter()

	return nil
}

func (c *Catalog) loadSource(ctx context.Context, source string) ([]Rule, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download file: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		body = f
	}
	defer body.Close()

	r, err := maybeGzip(body)
	if err != nil {
		return nil, err
	}
	return parseRules(r)
}

// maybeGzip sniffs the gzip magic number and unwraps compressed input.
func maybeGzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	}
	return br, nil
}

// parseRules reads one rule per line:
//
//	CODE,type,value[,min_subtotal[,max_discount[,expires_yyyy-mm-dd[,description]]]]
//
// Blank lines and lines starting with # are skipped.
func parseRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := parseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rules = append(rules, rule)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return rules, nil
}

func parseRule(line string) (Rule, error) {
	fields := strings.SplitN(line, ",", 7)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return Rule{}, fmt.Errorf("%w: want at least code,type,value", ErrInvalidRule)
	}

	r := Rule{Code: normalize(fields[0]), Type: models.CouponType(strings.ToLower(fields[1]))}
	if r.Code == "" {
		return Rule{}, fmt.Errorf("%w: empty code", ErrInvalidRule)
	}
	switch r.Type {
	case models.CouponPercentage, models.CouponFixed, models.CouponFreeDelivery:
	default:
		return Rule{}, fmt.Errorf("%w: unknown type %q", ErrInvalidRule, fields[1])
	}

	var err error
	if r.Value, err = parseFloat(fields[2]); err != nil {
		return Rule{}, fmt.Errorf("%w: value: %v", ErrInvalidRule, err)
	}
	if r.Type == models.CouponPercentage && (r.Value <= 0 || r.Value > 100) {
		return Rule{}, fmt.Errorf("%w: percentage must be in (0, 100]", ErrInvalidRule)
	}
	if len(fields) > 3 {
		v, err := parseFloat(fields[3])
		if err != nil {
			return Rule{}, fmt.Errorf("%w: min_subtotal: %v", ErrInvalidRule, err)
		}
		r.MinSubtotal = money.Amount(v)
	}
	if len(fields) > 4 {
		v, err := parseFloat(fields[4])
		if err != nil {
			return Rule{}, fmt.Errorf("%w: max_discount: %v", ErrInvalidRule, err)
		}
		r.MaxDiscount = money.Amount(v)
	}
	if len(fields) > 5 && fields[5] != "" {
		t, err := time.Parse("2006-01-02", fields[5])
		if err != nil {
			return Rule{}, fmt.Errorf("%w: expires: %v", ErrInvalidRule, err)
		}
		// valid through the whole day
		r.ExpiresAt = t.Add(24*time.Hour - time.Second)
	}
	if len(fields) > 6 {
		r.Description = fields[6]
	}
	return r, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (c *Catalog) rebuildFilter() {
	n := uint(len(c.rules))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, falsePositiveRate)
	for code := range c.rules {
		f.AddString(code)
	}
	c.filter = f
}

// Validate checks code for userID against subtotal and returns the discount
// it would grant. It does not redeem the code.
func (c *Catalog) Validate(ctx context.Context, code string, subtotal money.Amount, userID int64) (*models.CouponValidation, error) {
	code = normalize(code)
	if code == "" {
		return nil, ErrNotFound
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Most unknown codes stop at the filter
	if !c.filter.TestString(code) {
		return nil, ErrNotFound
	}
	rule, ok := c.rules[code]
	if !ok {
		return nil, ErrNotFound
	}
	if !rule.ExpiresAt.IsZero() && c.now().After(rule.ExpiresAt) {
		return nil, ErrExpired
	}
	if subtotal < rule.MinSubtotal {
		return nil, &BelowMinimumError{Minimum: rule.MinSubtotal}
	}
	if c.used[code][userID] {
		return nil, ErrAlreadyUsed
	}

	discount := pricing.Discount(rule.pricing(), subtotal)
	return &models.CouponValidation{
		Message: "Coupon applied",
		Coupon: models.Coupon{
			Code:           rule.Code,
			Type:           rule.Type,
			Value:          rule.Value,
			Description:    rule.Description,
			DiscountAmount: discount,
		},
		DiscountAmount: discount,
	}, nil
}

// Redeem validates and marks the code used by userID in one step.
func (c *Catalog) Redeem(ctx context.Context, code string, subtotal money.Amount, userID int64) (*models.CouponValidation, error) {
	v, err := c.Validate(ctx, code, subtotal, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	code = v.Coupon.Code
	if c.used[code][userID] {
		return nil, ErrAlreadyUsed
	}
	if c.used[code] == nil {
		c.used[code] = make(map[int64]bool)
	}
	c.used[code][userID] = true
	return v, nil
}

// Release makes a redeemed code available to userID again, e.g. after the
// order it was used on is cancelled.
func (c *Catalog) Release(code string, userID int64) {
	code = normalize(code)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.used[code], userID)
}

// GetStats returns statistics about loaded coupons
func (c *Catalog) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sizes := make([]int, len(c.sources))
	copy(sizes, c.sources)

	redeemed := 0
	for _, users := range c.used {
		redeemed += len(users)
	}

	return map[string]interface{}{
		"total_files":   len(c.sources),
		"file_sizes":    sizes,
		"total_coupons": len(c.rules),
		"redeemed":      redeemed,
	}
}
