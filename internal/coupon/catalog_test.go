package coupon

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

const rulesFile1 = `# code,type,value,min,max,expires,description
TENOFF,percentage,10,,1000
FIXED300,fixed,300,2000
`

const rulesFile2 = `freeship,free_delivery,0
TENOFF,percentage,20
OLDCODE,fixed,100,,,2020-01-31,Expired promo
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	f1 := writeFile(t, dir, "rules1.txt", []byte(rulesFile1))
	f2 := writeFile(t, dir, "rules2.txt.gz", gzipped(t, rulesFile2))

	c := NewCatalog(nil)
	require.NoError(t, c.LoadSources(context.Background(), []string{f1, f2}))
	return c
}

func TestCatalog_LoadSources(t *testing.T) {
	t.Run("plain and gzip files", func(t *testing.T) {
		c := loadedCatalog(t)

		stats := c.GetStats()
		assert.Equal(t, 2, stats["total_files"])
		assert.Equal(t, []int{2, 3}, stats["file_sizes"])
		// TENOFF appears in both files
		assert.Equal(t, 4, stats["total_coupons"])
	})

	t.Run("later sources override earlier ones", func(t *testing.T) {
		c := loadedCatalog(t)

		v, err := c.Validate(context.Background(), "TENOFF", 10000, 1)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(2000), v.DiscountAmount)
	})

	t.Run("from URL", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(gzipped(t, rulesFile1))
		}))
		defer srv.Close()

		c := NewCatalog(nil)
		require.NoError(t, c.LoadSources(context.Background(), []string{srv.URL + "/rules.gz"}))
		_, err := c.Validate(context.Background(), "fixed300", 2500, 1)
		assert.NoError(t, err)
	})

	t.Run("URL with bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewCatalog(nil)
		assert.Error(t, c.LoadSources(context.Background(), []string{srv.URL}))
	})

	t.Run("empty source list", func(t *testing.T) {
		assert.Error(t, NewCatalog(nil).LoadSources(context.Background(), nil))
	})

	t.Run("one failing source leaves the catalog unchanged", func(t *testing.T) {
		dir := t.TempDir()
		good := writeFile(t, dir, "good.txt", []byte(rulesFile1))

		c := NewCatalog(DefaultRules())
		err := c.LoadSources(context.Background(), []string{good, filepath.Join(dir, "missing.txt")})
		require.Error(t, err)

		_, err = c.Validate(context.Background(), "TENOFF", 5000, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, c.GetStats()["total_files"])
	})

	t.Run("every failing source is reported", func(t *testing.T) {
		dir := t.TempDir()
		bad := writeFile(t, dir, "bad.txt", []byte("ONLYCODE\n"))

		err := NewCatalog(nil).LoadSources(context.Background(), []string{filepath.Join(dir, "missing.txt"), bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source 1")
		assert.Contains(t, err.Error(), "source 2")
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("malformed rule", func(t *testing.T) {
		dir := t.TempDir()
		bad := writeFile(t, dir, "bad.txt", []byte("ONLYCODE\n"))

		err := NewCatalog(nil).LoadSources(context.Background(), []string{bad})
		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Rule
		wantErr bool
	}{
		{
			name: "percentage with cap",
			line: "tenoff, percentage, 10, , 1000",
			want: Rule{Code: "TENOFF", Type: models.CouponPercentage, Value: 10, MaxDiscount: 1000},
		},
		{
			name: "fixed with minimum and description",
			line: "F300,fixed,300,2000,,,Three hundred off",
			want: Rule{Code: "F300", Type: models.CouponFixed, Value: 300, MinSubtotal: 2000, Description: "Three hundred off"},
		},
		{
			name: "expiry is inclusive of the day",
			line: "OLD,fixed,100,,,2020-01-31",
			want: Rule{Code: "OLD", Type: models.CouponFixed, Value: 100, ExpiresAt: time.Date(2020, 1, 31, 23, 59, 59, 0, time.UTC)},
		},
		{name: "unknown type", line: "X,bogus,1", wantErr: true},
		{name: "percentage above 100", line: "X,percentage,150", wantErr: true},
		{name: "bad value", line: "X,fixed,abc", wantErr: true},
		{name: "bad date", line: "X,fixed,1,,,31/01/2020", wantErr: true},
		{name: "empty code", line: ",fixed,1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRule(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Validate(t *testing.T) {
	c := NewCatalog(DefaultRules())
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	tests := []struct {
		name         string
		code         string
		subtotal     money.Amount
		wantErr      error
		wantDiscount money.Amount
		wantType     models.CouponType
	}{
		{name: "percentage", code: "BIENVENUE", subtotal: 6000, wantDiscount: 600, wantType: models.CouponPercentage},
		{name: "percentage capped", code: "BIENVENUE", subtotal: 50000, wantDiscount: 2000, wantType: models.CouponPercentage},
		{name: "case and whitespace", code: "  bienvenue ", subtotal: 1000, wantDiscount: 100, wantType: models.CouponPercentage},
		{name: "fixed", code: "DSCHANG500", subtotal: 3000, wantDiscount: 500, wantType: models.CouponFixed},
		{name: "free delivery discounts nothing", code: "LIVRAISON", subtotal: 1000, wantDiscount: 0, wantType: models.CouponFreeDelivery},
		{name: "below minimum", code: "DSCHANG500", subtotal: 2999, wantErr: ErrBelowMinimum},
		{name: "expired", code: "INSAM2023", subtotal: 5000, wantErr: ErrExpired},
		{name: "unknown", code: "NOPE", subtotal: 5000, wantErr: ErrNotFound},
		{name: "empty", code: "", subtotal: 5000, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := c.Validate(ctx, tt.code, tt.subtotal, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiscount, v.DiscountAmount)
			assert.Equal(t, tt.wantDiscount, v.Coupon.DiscountAmount)
			assert.Equal(t, tt.wantType, v.Coupon.Type)
		})
	}
}

func TestCatalog_BelowMinimumMessage(t *testing.T) {
	c := NewCatalog(DefaultRules())
	_, err := c.Validate(context.Background(), "DSCHANG500", 1000, 1)
	require.ErrorIs(t, err, ErrBelowMinimum)
	assert.Contains(t, err.Error(), "3 000 XAF")
	assert.Equal(t, "This coupon requires a minimum order of 3 000 XAF", Message(err))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "This coupon has expired", Message(ErrExpired))
	assert.Equal(t, "You have already used this coupon", Message(fmt.Errorf("wrapped: %w", ErrAlreadyUsed)))
	assert.Equal(t, "Invalid coupon code", Message(ErrNotFound))
}

func TestCatalog_Redeem(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(DefaultRules())

	_, err := c.Redeem(ctx, "BIENVENUE", 5000, 7)
	require.NoError(t, err)

	_, err = c.Validate(ctx, "bienvenue", 5000, 7)
	assert.ErrorIs(t, err, ErrAlreadyUsed)

	_, err = c.Redeem(ctx, "BIENVENUE", 5000, 7)
	assert.ErrorIs(t, err, ErrAlreadyUsed)

	// another user is unaffected
	_, err = c.Validate(ctx, "BIENVENUE", 5000, 8)
	assert.NoError(t, err)

	assert.Equal(t, 1, c.GetStats()["redeemed"])

	c.Release("bienvenue", 7)
	_, err = c.Validate(ctx, "BIENVENUE", 5000, 7)
	assert.NoError(t, err)
}

func TestCatalog_Redeem_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(DefaultRules())

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Redeem(ctx, "LIVRAISON", 1000, 42); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, ErrAlreadyUsed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestCatalog_BloomFilterKnowsEveryCode(t *testing.T) {
	var seed []Rule
	for i := 0; i < 500; i++ {
		seed = append(seed, Rule{Code: fmt.Sprintf("CODE%04d", i), Type: models.CouponFixed, Value: 1})
	}
	c := NewCatalog(seed)

	for _, r := range seed {
		assert.True(t, c.filter.TestString(r.Code), r.Code)
	}
}
