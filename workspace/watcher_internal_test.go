package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReleaseKeepsNewerTimer(t *testing.T) {
	w := &Watcher{pending: make(map[string]*time.Timer)}

	older := time.NewTimer(time.Hour)
	newer := time.NewTimer(time.Hour)
	defer older.Stop()
	defer newer.Stop()

	w.pending["main.asm"] = newer
	assert.False(t, w.release("main.asm", older))
	assert.Same(t, newer, w.pending["main.asm"])

	assert.True(t, w.release("main.asm", newer))
	assert.NotContains(t, w.pending, "main.asm")
}
