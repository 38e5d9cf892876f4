// Package config loads application configuration from environment
// variables.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/iliyamo/hotel-booking-engine/internal/checkout"
	"github.com/iliyamo/hotel-booking-engine/internal/ledger"
)

// Config holds all runtime configuration.  The hotel (tenant) identifier,
// the tax-rate set and the checkout grace policy are configuration
// consumed by the engine, never compiled-in constants: there is no
// fallback hotel or actor id anywhere in the code.
type Config struct {
	Env            string           // application environment (dev/test/prod)
	Port           string           // HTTP port to listen on
	DBUser         string           // database username
	DBPass         string           // database password (optional)
	DBHost         string           // database host address
	DBPort         string           // database port number
	DBName         string           // database name
	JWTSecret      string           // secret used to sign JWTs
	AccessTTLMin   int              // access token TTL in minutes
	RefreshTTLDays int              // refresh token TTL in days
	BcryptCost     int              // bcrypt cost for password hashing
	HotelID        uint64           // tenant: the property this instance serves
	TaxRates       []ledger.TaxRate // tax component set applied to booking base amounts
	GracePolicy    checkout.Policy  // late-checkout grace window and fee schedule
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		HotelID:        mustUint("HOTEL_ID"),
		TaxRates:       mustTaxRates("TAX_RATES"),
		GracePolicy: checkout.Policy{
			GraceMinutes:    envInt("CHECKOUT_GRACE_MIN", 60),
			PerHourFeePaise: int64(envInt("LATE_FEE_PER_HOUR_PAISE", 10000)),
			MaxFeePaise:     int64(envInt("LATE_FEE_MAX_PAISE", 50000)),
		},
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts to int.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustUint is like must() but converts to uint64.
func mustUint(key string) uint64 {
	s := must(key)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		log.Fatalf("invalid id for %s: %q", key, s)
	}
	return n
}

// mustTaxRates parses a comma-separated "NAME=PERCENT" list, e.g.
// "GST=12" or "CGST=6,SGST=6,luxury=2.5".  An empty or malformed set is
// a configuration error: taxes are policy, not something to default.
func mustTaxRates(key string) []ledger.TaxRate {
	raw := must(key)
	parts := strings.Split(raw, ",")
	rates := make([]ledger.TaxRate, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, val, ok := strings.Cut(p, "=")
		if !ok {
			log.Fatalf("invalid tax rate entry in %s: %q", key, p)
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || pct < 0 {
			log.Fatalf("invalid tax percent in %s: %q", key, p)
		}
		rates = append(rates, ledger.TaxRate{Name: strings.TrimSpace(name), Percent: pct})
	}
	if len(rates) == 0 {
		log.Fatalf("no tax rates configured in %s", key)
	}
	return rates
}
