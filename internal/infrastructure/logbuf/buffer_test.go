package logbuf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_KeepsInsertionOrderBelowCapacity(t *testing.T) {
	b := New(4)

	fmt.Fprintln(b, "one")
	fmt.Fprintln(b, "two")

	require.Equal(t, 2, b.Len())
	require.Equal(t, []string{"one", "two"}, b.Lines())
}

func TestBuffer_WrapsAndDropsOldest(t *testing.T) {
	b := New(3)

	for _, line := range []string{"one", "two", "three", "four", "five"} {
		fmt.Fprintln(b, line)
	}

	require.Equal(t, 3, b.Len())
	require.Equal(t, []string{"three", "four", "five"}, b.Lines())
}

func TestBuffer_IgnoresEmptyWrites(t *testing.T) {
	b := New(4)

	n, err := b.Write([]byte("\n"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 0, b.Len())
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	b := New(0)

	fmt.Fprintln(b, "line")
	require.Equal(t, 1, b.Len())
}

func TestBuffer_ConcurrentWrites(t *testing.T) {
	b := New(64)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fmt.Fprintf(b, "line %d\n", i)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 32, b.Len())
}
