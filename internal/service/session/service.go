// Package session issues anonymous shopper ids and stores per-session client flags.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"

	"github.com/google/uuid"
)

// FlagPopupShown records that the channel popup was displayed to this shopper.
const FlagPopupShown = "popup_shown"

var (
	idPattern    = regexp.MustCompile(`^session_\d+_[a-z0-9]+$`)
	allowedFlags = []string{FlagPopupShown}
)

// Provider is created once per process and shared by the HTTP layer.
type Provider struct {
	flags cache.Provider
	now   func() time.Time
}

func New(flags cache.Provider) *Provider {
	return &Provider{flags: flags, now: time.Now}
}

// NewID returns session_<unix-millis>_<8 hex chars>.
func (p *Provider) NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "session_" + strconv.FormatInt(p.now().UnixMilli(), 10) + "_" + suffix
}

// Valid accepts ids minted by NewID as well as older browser-generated ones.
func (p *Provider) Valid(id string) bool {
	return len(id) <= 128 && idPattern.MatchString(id)
}

// Resolve returns the first valid candidate. When none is valid it mints a
// new id and reports issued=true.
func (p *Provider) Resolve(candidates ...string) (id string, issued bool) {
	for _, c := range candidates {
		if p.Valid(c) {
			return c, false
		}
	}
	return p.NewID(), true
}

// AllowedFlags lists the flag names clients may set.
func AllowedFlags() []string {
	out := make([]string, len(allowedFlags))
	copy(out, allowedFlags)
	return out
}

func (p *Provider) Flag(ctx context.Context, sessionID, name string) (bool, error) {
	if err := checkFlag(name); err != nil {
		return false, err
	}
	val, err := p.flags.Get(ctx, cache.FlagKey(sessionID, name))
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read flag %s: %w", name, err)
	}
	return val == "true", nil
}

// SetFlag persists the flag with no expiry.
func (p *Provider) SetFlag(ctx context.Context, sessionID, name string) error {
	if err := checkFlag(name); err != nil {
		return err
	}
	if err := p.flags.Set(ctx, cache.FlagKey(sessionID, name), "true", 0); err != nil {
		return fmt.Errorf("write flag %s: %w", name, err)
	}
	return nil
}

// Flags returns every allowed flag for the session.
func (p *Provider) Flags(ctx context.Context, sessionID string) (map[string]bool, error) {
	out := make(map[string]bool, len(allowedFlags))
	for _, name := range allowedFlags {
		set, err := p.Flag(ctx, sessionID, name)
		if err != nil {
			return nil, err
		}
		out[name] = set
	}
	return out, nil
}

func checkFlag(name string) error {
	for _, allowed := range allowedFlags {
		if name == allowed {
			return nil
		}
	}
	return fmt.Errorf("unknown flag %q: %w", name, domain.ErrInvalidInput)
}
