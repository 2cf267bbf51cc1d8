package worker_test

import (
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/roster/internal/engine/worker"
)

func TestMailbox_PreservesOrder(t *testing.T) {
	box := worker.NewMailbox[int]()
	assert.Empty(t, box.Drain())

	for i := range 5 {
		box.Post(i)
	}
	<-box.Ready()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, box.Drain())
	assert.Empty(t, box.Drain())
}

func TestMailbox_ConcurrentPosts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		box := worker.NewMailbox[int]()
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Go(func() {
				for j := range 100 {
					box.Post(i*100 + j)
				}
			})
		}
		wg.Wait()
		assert.Len(t, box.Drain(), 800)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", worker.StateIdle.String())
	assert.Equal(t, "running", worker.StateRunning.String())
	assert.Equal(t, "completed", worker.StateCompleted.String())
	assert.Equal(t, "unknown", worker.State(9).String())
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "list", worker.CommandList.String())
	assert.Equal(t, "size", worker.CommandSize.String())
	assert.Equal(t, "copy", worker.CommandCopy.String())
	assert.Equal(t, "unknown", worker.Command(0).String())
}
