package entity

import (
	"sync"
	"testing"
)

func TestGenerateID_Uniqueness(t *testing.T) {
	const numIDs = 1000
	ids := make(map[ID]bool, numIDs)

	for i := 0; i < numIDs; i++ {
		id := GenerateID()
		if ids[id] {
			t.Errorf("GenerateID() produced duplicate ID: %d", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestGenerateID_ThreadSafety(t *testing.T) {
	const numGoroutines = 10
	const idsPerGoroutine = 100
	const totalIDs = numGoroutines * idsPerGoroutine

	ids := make(chan ID, totalIDs)
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				ids <- GenerateID()
			}
		}()
	}

	wg.Wait()
	close(ids)

	idSet := make(map[ID]bool, totalIDs)
	for id := range ids {
		if idSet[id] {
			t.Errorf("GenerateID() produced duplicate ID in concurrent test: %d", id)
		}
		idSet[id] = true
	}

	if len(idSet) != totalIDs {
		t.Errorf("Expected %d total IDs, got %d", totalIDs, len(idSet))
	}
}
