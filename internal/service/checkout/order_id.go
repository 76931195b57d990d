package checkout

import (
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	orderIDPrefix    = "FB"
	orderIDSuffixLen = 6
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewOrderID returns FB-<unix millis>-<6 base36 chars>, upper-cased. Uniqueness is
// probabilistic; collisions are left to the order store.
func NewOrderID(now time.Time, random io.Reader) (string, error) {
	buf := make([]byte, orderIDSuffixLen)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", err
	}
	suffix := make([]byte, orderIDSuffixLen)
	for i, b := range buf {
		suffix[i] = base36[int(b)%len(base36)]
	}
	id := orderIDPrefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
	return strings.ToUpper(id), nil
}
