package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/utils"
)

// ErrCodeMiss is returned when no live code exists for a phone number.
var ErrCodeMiss = errors.New("no pending code")

// CodeVerifier issues and checks one-time login codes.
type CodeVerifier interface {
	Issue(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// AcceptAnyVerifier is the development stub: nothing is sent and every code
// is accepted.
type AcceptAnyVerifier struct{}

func (AcceptAnyVerifier) Issue(context.Context, string) error { return nil }

func (AcceptAnyVerifier) Verify(context.Context, string, string) (bool, error) { return true, nil }

// CodeSender delivers a code to a phone number.
type CodeSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogCodeSender writes codes to the log. It stands in for an SMS gateway.
type LogCodeSender struct {
	Log *zap.Logger
}

func (s LogCodeSender) SendCode(_ context.Context, phone, code string) error {
	s.Log.Info("one-time code issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// CodeStore keeps hashed codes until they expire.
type CodeStore interface {
	Put(ctx context.Context, phone, hash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	// Consume removes the pending code only while it still equals hash and
	// reports whether it did. Of two concurrent consumers exactly one wins.
	Consume(ctx context.Context, phone, hash string) (bool, error)
}

// OTPVerifier issues six-digit codes, stores their bcrypt hashes and accepts
// each code once.
type OTPVerifier struct {
	codes    CodeStore
	sender   CodeSender
	ttl      time.Duration
	generate func() (string, error)
}

// NewOTPVerifier creates a verifier whose codes live for ttl.
func NewOTPVerifier(codes CodeStore, sender CodeSender, ttl time.Duration) *OTPVerifier {
	return &OTPVerifier{codes: codes, sender: sender, ttl: ttl, generate: randomCode}
}

// Issue generates, stores and sends a new code, replacing any pending one.
func (v *OTPVerifier) Issue(ctx context.Context, phone string) error {
	code, err := v.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := v.codes.Put(ctx, phone, hash, v.ttl); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	return v.sender.SendCode(ctx, phone, code)
}

// Verify checks code against the pending one and consumes it on success.
func (v *OTPVerifier) Verify(ctx context.Context, phone, code string) (bool, error) {
	hash, err := v.codes.Get(ctx, phone)
	if errors.Is(err, ErrCodeMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !utils.CheckCode(hash, code) {
		return false, nil
	}
	return v.codes.Consume(ctx, phone, hash)
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type memoryCode struct {
	hash    string
	expires time.Time
}

// MemoryCodeStore keeps codes in process memory.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	now   func() time.Time
}

// NewMemoryCodeStore creates an empty MemoryCodeStore.
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: map[string]memoryCode{}, now: time.Now}
}

func (m *MemoryCodeStore) Put(_ context.Context, phone, hash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = memoryCode{hash: hash, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCodeStore) Get(_ context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[phone]
	if !ok || !m.now().Before(code.expires) {
		delete(m.codes, phone)
		return "", ErrCodeMiss
	}
	return code.hash, nil
}

func (m *MemoryCodeStore) Consume(_ context.Context, phone, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[phone]
	if !ok || code.hash != hash || !m.now().Before(code.expires) {
		return false, nil
	}
	delete(m.codes, phone)
	return true, nil
}

// RedisCodeStore keeps codes in Redis with native expiry.
type RedisCodeStore struct {
	c      *redis.Client
	prefix string
}

// NewRedisCodeStore stores keys as "otp:<phone>".
func NewRedisCodeStore(c *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{c: c, prefix: "otp:"}
}

func (r *RedisCodeStore) Put(ctx context.Context, phone, hash string, ttl time.Duration) error {
	return r.c.Set(ctx, r.prefix+phone, hash, ttl).Err()
}

func (r *RedisCodeStore) Get(ctx context.Context, phone string) (string, error) {
	val, err := r.c.Get(ctx, r.prefix+phone).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCodeMiss
		}
		return "", err
	}
	return val, nil
}

// consumeScript deletes KEYS[1] only while it holds ARGV[1].
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *RedisCodeStore) Consume(ctx context.Context, phone, hash string) (bool, error) {
	n, err := consumeScript.Run(ctx, r.c, []string{r.prefix + phone}, hash).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
