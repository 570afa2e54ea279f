package main

import (
	"log/slog"
	"testing"

	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

// resetGlobals restores the flag defaults and silences logging.
func resetGlobals(t *testing.T) {
	t.Helper()
	def := memory.DefaultConfig()
	permBudget, tempBudget = def.PermanentBudget, def.TemporaryBudget
	permFallback, tempFallback = false, false
	lang = "en"
	stressPool, stressTasks, stressRepeat, stressKeys, stressTrace = 0, 8, 2, 64, ""
	reportJSON = false
	logger = slog.New(slog.DiscardHandler)
	assert.SetLogger(logger)
	t.Cleanup(func() {
		assert.SetLogger(nil)
	})
}
