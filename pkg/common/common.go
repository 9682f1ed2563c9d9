package common

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			zap.S().Panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a time ordered unique id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUIDString same as UUIDint64, decimal string form
func UUIDString() string {
	return node().Generate().String()
}

// IfEmptyStr returns defstr when src is blank
func IfEmptyStr(src string, defstr string) string {
	if strings.TrimSpace(src) == "" {
		return defstr
	}
	return src
}

// TailStr returns the last n runes of s, or s when shorter
func TailStr(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
