package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateReference builds a human-readable transaction reference:
// prefix, microsecond slice of the clock, three random digits, user id.
func GenerateReference(prefix string, userID uint) string {
	mu.Lock()
	defer mu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := (nowNano / 1000) % 1000000

	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("%s-%06d%03d%d", prefix, nanoPart, randPart, userID)
}
