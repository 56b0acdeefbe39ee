// pkg/engine/race_condition_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-planet-protector/pkg/config"
)

// TestSnapshotRaceCondition reads snapshots from other goroutines while the
// loop goroutine steps the session. Run with -race.
func TestSnapshotRaceCondition(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bodies.SpawnOdds = 3
	s := newTestSession(t, cfg, nil)

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					snap := s.Snapshot()
					if snap == nil {
						t.Error("nil snapshot")
						return
					}
					for _, b := range snap.Bodies {
						if b.Mass > b.StartingMass {
							t.Errorf("snapshot body %d mass above starting mass", b.ID)
						}
					}
					_ = s.LastTickAt()
					_ = s.IsRunning()
				}
			}
		}()
	}

	p := &scriptedPresenter{}
	for i := 0; i < 200 && s.Step(p) == StateRunning; i++ {
	}
	close(done)

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("readers did not stop")
	}
}
