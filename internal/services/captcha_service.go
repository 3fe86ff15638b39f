package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CaptchaService issues small arithmetic questions for the public forms.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Challenge returns a question like "3 + 5" and its answer.
// The answer is kept in the session; only the question is rendered.
func (s *CaptchaService) Challenge() (string, int) {
	s.mu.Lock()
	a := s.rnd.Intn(10)
	b := s.rnd.Intn(10)
	op := s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Verify compares a submitted answer with the stored one.
// A missing stored answer never verifies.
func (s *CaptchaService) Verify(expected interface{}, submitted string) error {
	want, ok := expected.(int)
	if !ok {
		return ErrInvalidCaptcha
	}
	got, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil || got != want {
		return ErrInvalidCaptcha
	}
	return nil
}
