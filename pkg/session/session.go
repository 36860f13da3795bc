// Package session keeps logged-in state in the database and hands the browser
// a signed cookie that names it. One-shot flash messages ride in a second
// signed cookie.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ledger/models"
	"ledger/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// ErrNoSession means the request carries no usable session.
var ErrNoSession = errors.New("no active session")

const (
	identityKey   = "identity"
	pendingKey    = "pending_flashes"
	flashLifetime = 10 * time.Minute
	issuer        = "ledger"
)

// Identity is the per-request view of who is logged in.
type Identity struct {
	SessionID uint
	UserID    uint
	Email     string
}

type sessionClaims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

type flashClaims struct {
	Messages []string `json:"msgs"`
	jwt.RegisteredClaims
}

// Store issues, resolves and revokes sessions.
type Store struct {
	db          *gorm.DB
	secret      []byte
	cookieName  string
	flashCookie string
	ttl         time.Duration
	secure      bool
	now         func() time.Time
}

// NewStore builds a Store from config. An empty secret gets a random key that
// only lives as long as the process.
func NewStore(db *gorm.DB, cfg config.SessionConfig) (*Store, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	name := cfg.CookieName
	if name == "" {
		name = "ledger_session"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{
		db:          db,
		secret:      secret,
		cookieName:  name,
		flashCookie: name + "_flash",
		ttl:         ttl,
		secure:      cfg.SecureCookie,
		now:         time.Now,
	}, nil
}

// CookieName is the name of the session cookie.
func (s *Store) CookieName() string { return s.cookieName }

// FlashCookieName is the name of the flash cookie.
func (s *Store) FlashCookieName() string { return s.flashCookie }

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Start creates a session row for userID and sets the cookie on the response.
func (s *Store) Start(c *gin.Context, userID uint) (*models.Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(b)
	now := s.now()
	row := models.Session{UserID: userID, TokenHash: hashToken(token), ExpiresAt: now.Add(s.ttl).UTC()}
	if err := s.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	signed, err := s.sign(&sessionClaims{
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	})
	if err != nil {
		return nil, err
	}
	s.setCookie(c, s.cookieName, signed, int(s.ttl.Seconds()))
	return &row, nil
}

// Lookup resolves the request's cookie to a live session row.
func (s *Store) Lookup(c *gin.Context) (*models.Session, error) {
	raw, err := c.Cookie(s.cookieName)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}
	var claims sessionClaims
	if err := s.parse(raw, &claims); err != nil || claims.Token == "" {
		return nil, ErrNoSession
	}
	var row models.Session
	err = s.db.WithContext(c.Request.Context()).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashToken(claims.Token), false, s.now().UTC()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &row, nil
}

// Destroy revokes the current session, if any, and clears both cookies.
func (s *Store) Destroy(c *gin.Context) error {
	var err error
	if row, lerr := s.Lookup(c); lerr == nil {
		err = s.db.WithContext(c.Request.Context()).
			Model(&models.Session{}).Where("id = ?", row.ID).Update("revoked", true).Error
		if err != nil {
			err = fmt.Errorf("revoke session: %w", err)
		}
	}
	s.setCookie(c, s.cookieName, "", -1)
	s.setCookie(c, s.flashCookie, "", -1)
	return err
}

// Purge deletes expired and revoked rows.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("revoked = ? OR expires_at <= ?", true, s.now().UTC()).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

type flashState struct {
	msgs []string
}

// state returns the request's flash queue, seeded from the incoming cookie on
// first use.
func (s *Store) state(c *gin.Context) *flashState {
	if v, ok := c.Get(pendingKey); ok {
		if st, ok := v.(*flashState); ok {
			return st
		}
	}
	st := &flashState{msgs: s.read(c)}
	c.Set(pendingKey, st)
	return st
}

// AddFlash queues msg for the next rendered page.
func (s *Store) AddFlash(c *gin.Context, msg string) {
	st := s.state(c)
	st.msgs = append(st.msgs, msg)

	now := s.now()
	signed, err := s.sign(&flashClaims{
		Messages: st.msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashLifetime)),
		},
	})
	if err != nil {
		return
	}
	s.setCookie(c, s.flashCookie, signed, int(flashLifetime.Seconds()))
}

// Flashes returns queued messages and clears them.
func (s *Store) Flashes(c *gin.Context) []string {
	st := s.state(c)
	msgs := st.msgs
	st.msgs = nil
	if len(msgs) > 0 {
		s.setCookie(c, s.flashCookie, "", -1)
	}
	return msgs
}

func (s *Store) read(c *gin.Context) []string {
	raw, err := c.Cookie(s.flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	var claims flashClaims
	if err := s.parse(raw, &claims); err != nil {
		return nil
	}
	return claims.Messages
}

func (s *Store) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign cookie: %w", err)
	}
	return signed, nil
}

func (s *Store) parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	return err
}

func (s *Store) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

// SetIdentity stores id on the request context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the identity stored by SetIdentity.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.UserID != 0
}
