package autocomplete

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func seed() *Index {
	x := New()
	x.Rebuild([]Entry{
		{ProductID: 1, Name: "Gold Standard Whey", BrandName: "Optimum Nutrition"},
		{ProductID: 2, Name: "Gold Standard Casein", BrandName: "Optimum Nutrition"},
		{ProductID: 3, Name: "C4 Original", BrandName: "Cellucor"},
		{ProductID: 4, Name: "Ghost Whey", BrandName: "Ghost"},
	})
	return x
}

func TestSearch(t *testing.T) {
	x := seed()
	require.Equal(t, 4, x.Len())
	require.Equal(t, []string{"Gold Standard Casein", "Gold Standard Whey"}, x.Search("gold", 0))
	require.Equal(t, []string{"Ghost", "Ghost Whey", "Gold Standard Casein", "Gold Standard Whey"}, x.Search("G", 10))
	require.Equal(t, []string{"Ghost"}, x.Search("g", 1))
	require.Equal(t, []string{"Optimum Nutrition"}, x.Search("  OPT", 5))
	require.Empty(t, x.Search("zzz", 5))
	require.Empty(t, x.Search("   ", 5))
}

func TestInsertReplacesAndRemove(t *testing.T) {
	x := seed()

	x.Insert(Entry{ProductID: 4, Name: "Ghost Legend", BrandName: "Ghost"})
	require.Equal(t, []string{"Ghost", "Ghost Legend"}, x.Search("ghost", 10))

	// 品牌仍被其他商品使用時保留
	x.Remove(1)
	require.Equal(t, []string{"Gold Standard Casein"}, x.Search("gold", 10))
	require.Equal(t, []string{"Optimum Nutrition"}, x.Search("optimum", 10))

	x.Remove(2)
	require.Empty(t, x.Search("optimum", 10))
	require.Empty(t, x.Search("gold", 10))
	require.Empty(t, x.root.children['o'])

	x.Remove(99)
	require.Equal(t, 2, x.Len())
}

func TestLimitCapped(t *testing.T) {
	x := New()
	for i := 0; i < 80; i++ {
		x.Insert(Entry{ProductID: i, Name: fmt.Sprintf("Whey %02d", i)})
	}
	require.Len(t, x.Search("whey", 1000), MaxLimit)
	require.Equal(t, "Whey 00", x.Search("whey", 1)[0])
}

func TestConcurrentAccess(t *testing.T) {
	x := seed()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			x.Insert(Entry{ProductID: 100 + i, Name: fmt.Sprintf("Creatine %d", i), BrandName: "Klean"})
		}(i)
		go func() {
			defer wg.Done()
			_ = x.Search("c", 10)
		}()
	}
	wg.Wait()
	require.Len(t, x.Search("creatine", 50), 8)
}
