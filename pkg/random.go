package pkg

import (
	"math/rand"
	"sync"
	"time"
)

// codeAlphabet omits 0, O, 1 and I.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandString returns a human-typable game code of length n.
func RandString(n int) string {
	rngMu.Lock()
	defer rngMu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
