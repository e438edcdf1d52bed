package zipio_test

import (
	"testing"

	"github.com/Cleptomanis/warzone2100/mapio"
	"github.com/Cleptomanis/warzone2100/mapio/ioptest"
	"github.com/Cleptomanis/warzone2100/mapio/zipio"
)

func TestProviderConformance(t *testing.T) {
	ioptest.TestProvider(t, func() mapio.Provider {
		a, _, err := zipio.CreateMemory()
		if err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
		t.Cleanup(func() { a.Close() })
		return a
	})
}
