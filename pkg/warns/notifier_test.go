package warns

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifierDelivers(t *testing.T) {
	transport := newFakeTransport()
	n := NewNotifier(transport)

	n.Submit("u1", "hola")
	n.Wait()

	assert.Equal(t, []string{"u1: hola"}, transport.sentDMs())
}

func TestNotifierDropsFailures(t *testing.T) {
	transport := newFakeTransport()
	transport.dmErr = errors.New("Cannot send messages to this user")
	n := NewNotifier(transport)

	assert.NotPanics(t, func() {
		n.Submit("u1", "hola")
		n.Wait()
	})
	assert.Empty(t, transport.sentDMs())
}

func TestNotifierRecoversPanics(t *testing.T) {
	transport := newFakeTransport()
	transport.panicDM = true
	n := NewNotifier(transport)

	assert.NotPanics(t, func() {
		n.Submit("u1", "hola")
		n.Wait()
	})
}

func TestNotifierCloseDrainsAndRejects(t *testing.T) {
	transport := newFakeTransport()
	n := NewNotifier(transport)

	n.Submit("u1", "hola")
	n.Close()
	assert.Equal(t, []string{"u1: hola"}, transport.sentDMs())

	n.Submit("u2", "tarde")
	n.Wait()
	assert.Equal(t, []string{"u1: hola"}, transport.sentDMs())
}

func TestNotifierCloseWithConcurrentSubmitters(t *testing.T) {
	transport := newFakeTransport()
	n := NewNotifier(transport)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Submit("u1", "hola")
		}()
	}

	assert.NotPanics(t, n.Close)
	wg.Wait()
	n.Wait()

	delivered := len(transport.sentDMs())
	assert.LessOrEqual(t, delivered, 20)

	n.Submit("u2", "tarde")
	n.Wait()
	assert.Len(t, transport.sentDMs(), delivered)
}
