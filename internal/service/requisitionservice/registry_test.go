package requisitionservice_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/service/requisitionservice"
)

func TestRegistry_OneWorkflowPerActor(t *testing.T) {
	clk := clock.NewFixed(today)
	reg := requisitionservice.NewRegistry(requisitionservice.Dependencies{
		Catalog: new(MockCatalog),
		Stock:   new(MockStock),
		Issuer:  requisitionservice.NewDocumentNumberIssuer(new(MockSequence), "lastBillNumber", clk),
		Clock:   clk,
		Logger:  logger.NewNop(),
	})

	var wg sync.WaitGroup
	got := make([]*requisitionservice.Workflow, 50)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = reg.Get("u1")
		}(i)
	}
	wg.Wait()

	for _, wf := range got {
		assert.Same(t, got[0], wf)
	}
	assert.NotSame(t, got[0], reg.Get("u2"))
	assert.Equal(t, 2, reg.Len())
}
